package travis

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	// DefaultTemplateName is the embedded template rendered by default.
	DefaultTemplateName = "travis.yml.tpl"
	// DefaultFilename is the output file written next to the working directory.
	DefaultFilename = ".travis.yml"
	// Sentinel marks the output as generated. It appears at the top and the
	// bottom of the default template.
	Sentinel = "# THIS FILE IS AUTOGENERATED -- DO NOT EDIT #"
)

// TemplatesFS exposes the embedded template bundle rooted at templates/.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// DefaultTemplate returns the embedded .travis.yml template source.
func DefaultTemplate() string {
	data, err := fs.ReadFile(embeddedTemplates, "templates/"+DefaultTemplateName)
	if err != nil {
		return ""
	}
	return string(data)
}
