package travis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aymanbagabas/go-udiff"
)

// Diff returns a unified diff from the file at path to want. A missing file
// diffs against empty content; identical content yields "".
func Diff(path string, want []byte) (string, error) {
	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("travis: read %s: %w", path, err)
	}
	if string(current) == string(want) && err == nil {
		return "", nil
	}
	return udiff.Unified(path, path+" (generated)", string(current), string(want)), nil
}
