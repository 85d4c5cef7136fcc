package narrative

import (
	"context"
	"fmt"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// Scorer builds a context-augmented prompt, invokes the generative backend
// and parses a recommendation out of the free-form output. Any generation
// failure is surfaced as an error, which the pipeline treats as a per-symbol
// abstention.
type Scorer struct {
	gen  interfaces.Generator
	opts types.GenerateOptions
	// maximum number of retrieved documents embedded in the prompt
	maxDocs int
}

var _ interfaces.ContextScorer = (*Scorer)(nil)

func New(gen interfaces.Generator, opts types.GenerateOptions, maxDocs int) *Scorer {
	if maxDocs <= 0 {
		maxDocs = 3
	}
	return &Scorer{gen: gen, opts: opts, maxDocs: maxDocs}
}

func (s *Scorer) Score(ctx context.Context, snap types.MarketSnapshot, fv types.FeatureVector, docs []types.RetrievedDocument) (types.Recommendation, error) {
	ctx, span := trace.StartSpan(ctx, "narrative.Score")
	defer span.End()

	prompt := buildPrompt(snap, fv, docs, s.maxDocs)

	response, err := s.gen.Generate(ctx, prompt, s.opts)
	if err != nil {
		return types.Recommendation{}, fmt.Errorf("generate for %s: %w", snap.Symbol, err)
	}
	if response == "" {
		return types.Recommendation{}, fmt.Errorf("generate for %s: empty response", snap.Symbol)
	}

	rec := parseResponse(snap.Symbol, response, snap.CurrentPrice)
	logger.Debug(ctx, "Narrative recommendation parsed",
		"symbol", snap.Symbol,
		"action", rec.Action,
		"confidence", rec.Confidence,
		"docs", len(docs),
	)
	return rec, nil
}
