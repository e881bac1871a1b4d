// Package travis renders the dune-gdt Travis CI descriptor from an embedded
// pongo2 template, expanding the builders sequence into one matrix entry per
// compiler and builder, and persists the result as .travis.yml.
//
// Typical use:
//
//	gen, err := travis.New()
//	if err != nil {
//		return err
//	}
//	res, err := gen.Generate(ctx, travis.Request{Params: travis.DefaultParams()})
package travis
