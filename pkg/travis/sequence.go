package travis

import "fmt"

const (
	// DefaultFirst and DefaultLast bound the builder numbers rendered when
	// nothing else is configured.
	DefaultFirst = 1
	DefaultLast  = 24

	// BuildersParam is the context key the loop directives iterate over.
	BuildersParam = "builders"

	// MaxBuilders bounds the length of a builder range.
	MaxBuilders = 1024
)

// Sequence is an ordered list of builder numbers.
type Sequence []int

// Range returns first..last inclusive. A last below first yields an empty,
// non-nil sequence so the loop renders zero times instead of failing the
// binding check. Ranges longer than MaxBuilders are cut at MaxBuilders
// entries; CheckRange reports them.
func Range(first, last int) Sequence {
	if last < first {
		return Sequence{}
	}
	n := span(first, last)
	if n >= MaxBuilders {
		n = MaxBuilders - 1
	}
	out := make(Sequence, 0, n+1)
	for k := uint64(0); k <= n; k++ {
		out = append(out, first+int(k))
	}
	return out
}

// CheckRange rejects ranges with more than MaxBuilders entries.
func CheckRange(first, last int) error {
	if last < first {
		return nil
	}
	if span(first, last) >= MaxBuilders {
		return fmt.Errorf("%w: %d..%d exceeds %d builders", ErrRangeTooLarge, first, last, MaxBuilders)
	}
	return nil
}

// span is last-first computed without overflow; last must not be below first.
func span(first, last int) uint64 {
	return uint64(last) - uint64(first)
}

// Params are the values bound into the template context.
type Params struct {
	Builders Sequence
	// Vars are extra bindings. Builders takes precedence over a var of the
	// same name.
	Vars map[string]any
}

// DefaultParams binds builders 1 through 24.
func DefaultParams() Params {
	return Params{Builders: Range(DefaultFirst, DefaultLast)}
}

func (p Params) context() map[string]any {
	ctx := make(map[string]any, len(p.Vars)+1)
	for key, value := range p.Vars {
		ctx[key] = value
	}
	if p.Builders != nil {
		ctx[BuildersParam] = []int(p.Builders)
	}
	return ctx
}
