// Package template defines the renderer-agnostic template contract used by
// the CI config generator. The pongo2-backed implementation lives in the
// gotemplate subpackage.
package template
