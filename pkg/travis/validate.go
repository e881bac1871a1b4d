package travis

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MatrixEntry is one matrix.include item of the descriptor.
type MatrixEntry struct {
	OS       string `yaml:"os"`
	Compiler string `yaml:"compiler,omitempty"`
	Env      string `yaml:"env"`
}

// Descriptor is the subset of the Travis descriptor the generator inspects.
// Everything else is left to the CI provider.
type Descriptor struct {
	Language string `yaml:"language"`
	Matrix   struct {
		Include []MatrixEntry `yaml:"include"`
	} `yaml:"matrix"`
}

// Entries returns the number of matrix entries.
func (d Descriptor) Entries() int {
	return len(d.Matrix.Include)
}

// Validate parses data as YAML. Anchors and aliases are resolved by the
// decoder.
func Validate(data []byte) (Descriptor, error) {
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	return desc, nil
}
