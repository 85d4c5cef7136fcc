package noop

import (
	"context"
	"errors"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// ErrDisabled is returned by every Generate call; the narrative scorer
// treats it as a per-symbol abstention.
var ErrDisabled = errors.New("generative backend disabled")

// Generator is used when no LLM provider is configured.
type Generator struct{}

var _ interfaces.Generator = (*Generator)(nil)

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(context.Context, string, types.GenerateOptions) (string, error) {
	return "", ErrDisabled
}
