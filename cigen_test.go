package cigen_test

import (
	"context"
	"io/fs"
	"os"
	"testing"

	cigen "github.com/goliatone/go-cigen"
	"github.com/goliatone/go-cigen/pkg/travis"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	res, err := cigen.Generate(context.Background(), dir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Entries != 52 {
		t.Fatalf("expected 52 matrix entries, got %d", res.Entries)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != string(res.Data) {
		t.Fatal("file on disk differs from the rendered result")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := fs.ReadFile(cigen.EmbeddedTemplates(), travis.DefaultTemplateName)
	if err != nil {
		t.Fatalf("read embedded template: %v", err)
	}
	if string(data) != travis.DefaultTemplate() {
		t.Fatal("embedded template differs from DefaultTemplate")
	}
}
