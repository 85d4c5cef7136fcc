package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// Generator is a black-box text generator: prompt in, raw text out.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error)
}
