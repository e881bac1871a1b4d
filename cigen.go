// Package cigen generates the dune-gdt .travis.yml descriptor. Generate is
// the library form of running the cigen command without flags.
package cigen

import (
	"context"

	"github.com/goliatone/go-cigen/pkg/travis"
)

// Generate renders the embedded template with builders 1 through 24 and
// writes dir/.travis.yml, replacing any existing file.
func Generate(ctx context.Context, dir string) (travis.Result, error) {
	gen, err := travis.New()
	if err != nil {
		return travis.Result{}, err
	}
	return gen.Generate(ctx, travis.Request{
		Dir:    dir,
		Params: travis.DefaultParams(),
	})
}
