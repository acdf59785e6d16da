package service

import "context"

// Reasoner sends a prompt to an external text-generation service and returns
// the raw text it produced.
type Reasoner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
