package travis

import "errors"

var (
	// ErrTemplate wraps parse and execution failures reported by the engine.
	ErrTemplate = errors.New("travis: template failure")
	// ErrMissingParameter reports a required binding absent from the context.
	ErrMissingParameter = errors.New("travis: missing parameter binding")
	// ErrWrite wraps failures opening, writing or closing the output file.
	ErrWrite = errors.New("travis: write failure")
	// ErrInvalidYAML reports rendered output that does not parse as YAML.
	ErrInvalidYAML = errors.New("travis: rendered output is not valid YAML")
	// ErrRangeTooLarge reports a builder range longer than MaxBuilders.
	ErrRangeTooLarge = errors.New("travis: builder range too large")
	// ErrStale reports that the file on disk differs from the rendered output.
	ErrStale = errors.New("travis: output is stale")
)
