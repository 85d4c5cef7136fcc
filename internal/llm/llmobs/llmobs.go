package llmobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	gen interfaces.Generator
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(gen interfaces.Generator) interfaces.Generator {
	return &observableGenerator{gen: gen}
}

func (og *observableGenerator) Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting generation",
		"model", opts.Model,
		"max_tokens", opts.MaxTokens,
		"prompt_len", len(prompt),
	)

	out, err := og.gen.Generate(ctx, prompt, opts)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Generation failed", err, "model", opts.Model)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Generation received",
		"model", opts.Model,
		"response_len", len(out),
	)

	return out, nil
}
