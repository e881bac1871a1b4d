package cigen

import (
	"io/fs"

	"github.com/goliatone/go-cigen/pkg/travis"
)

// EmbeddedTemplates exposes the built-in templates so callers can reuse or
// extend them without importing the travis package directly.
func EmbeddedTemplates() fs.FS {
	return travis.TemplatesFS()
}
