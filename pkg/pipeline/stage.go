// Package pipeline provides the typed stage plumbing the scanner
// composes its per-file processing from.
package pipeline

import (
	"context"
)

// Stage is one processing step: it takes an input and produces an
// output, and may be cancelled through the context.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
