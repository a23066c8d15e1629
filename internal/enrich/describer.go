// Package enrich supplies optional one-line descriptions for dependency
// names. Analysis output must not depend on it being available.
package enrich

import "context"

// Describer returns a short description for a dependency name
type Describer interface {
	Describe(ctx context.Context, name string) (string, error)
}

// DescriberFunc adapts a function to Describer
type DescriberFunc func(ctx context.Context, name string) (string, error)

// Describe calls f
func (f DescriberFunc) Describe(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}
