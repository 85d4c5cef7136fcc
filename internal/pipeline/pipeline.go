package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/combine"
	"stock-advisor/internal/features"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/retrieval"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// State names one stage of a pipeline run.
type State string

const (
	StateCollecting       State = "COLLECTING"
	StateScoringML        State = "SCORING_ML"
	StateRetrievingCtx    State = "RETRIEVING_CONTEXT"
	StateScoringNarrative State = "SCORING_NARRATIVE"
	StateCombining        State = "COMBINING"
	StatePersisting       State = "PERSISTING"
	StateComplete         State = "COMPLETE"
	StateFailed           State = "FAILED"
)

// Config carries the run-shape knobs. Zero values get sensible defaults.
type Config struct {
	Symbols     []string
	Concurrency int
	TopN        int

	RetrievalTopK int

	CollectTimeout   time.Duration
	ScoreTimeout     time.Duration
	RetrievalTimeout time.Duration
	NarrativeTimeout time.Duration
	CombineTimeout   time.Duration
	PersistTimeout   time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.TopN <= 0 {
		c.TopN = 5
	}
	if c.RetrievalTopK <= 0 {
		c.RetrievalTopK = 5
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 600 * time.Second
	}
	if c.ScoreTimeout <= 0 {
		c.ScoreTimeout = 900 * time.Second
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 300 * time.Second
	}
	if c.NarrativeTimeout <= 0 {
		c.NarrativeTimeout = 600 * time.Second
	}
	if c.CombineTimeout <= 0 {
		c.CombineTimeout = 300 * time.Second
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 120 * time.Second
	}
}

// Pipeline runs one recommendation cycle: collect snapshots, score, retrieve
// context, generate narratives, combine, rank and persist. One run at a time;
// Run serializes on an internal mutex.
type Pipeline struct {
	cfg       Config
	provider  interfaces.SnapshotProvider
	extractor *features.Extractor
	rules     interfaces.Scorer
	retriever interfaces.Retriever
	narrative interfaces.ContextScorer // nil disables the narrative stage
	store     interfaces.RecommendationStore

	// audit, when set, is called for every successfully persisted
	// recommendation.
	audit func(runID string, rec types.CombinedRecommendation)

	runMu sync.Mutex
}

func New(cfg Config, provider interfaces.SnapshotProvider, extractor *features.Extractor,
	rules interfaces.Scorer, retriever interfaces.Retriever, narrative interfaces.ContextScorer,
	store interfaces.RecommendationStore) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{
		cfg:       cfg,
		provider:  provider,
		extractor: extractor,
		rules:     rules,
		retriever: retriever,
		narrative: narrative,
		store:     store,
	}
}

// SetAudit registers a post-persist hook.
func (p *Pipeline) SetAudit(fn func(runID string, rec types.CombinedRecommendation)) {
	p.audit = fn
}

// Run executes one full pipeline cycle. The returned RunResult is valid for
// both COMPLETE and FAILED runs; err is non-nil only for FAILED runs.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ctx, span := trace.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	result := newRunResult(uuid.NewString())
	logger.Info(ctx, "Pipeline run starting", "run_id", result.RunID, "symbols", len(p.cfg.Symbols))

	snaps, err := p.collect(ctx, result)
	if err != nil {
		return result.fail(ctx, StateCollecting, err), err
	}

	fvs, mlRecs := p.scoreML(ctx, result, snaps)

	docs := p.retrieveContext(ctx, result, snaps, fvs)

	narrRecs := p.scoreNarrative(ctx, result, snaps, fvs, docs)

	ranked := p.combineAndRank(ctx, result, snaps, mlRecs, narrRecs)

	// Every combined symbol gets a row; TopN bounds only what the run reports.
	p.persist(ctx, result, ranked)

	top := ranked
	if len(top) > p.cfg.TopN {
		top = top[:p.cfg.TopN]
	}
	result.complete(top)
	logger.Stage(ctx, result.RunID, string(StateComplete),
		"recommendations", len(top), "duration", result.Duration().String())
	return result, nil
}

func (p *Pipeline) collect(ctx context.Context, result *RunResult) (map[string]types.MarketSnapshot, error) {
	result.enter(ctx, StateCollecting)
	defer result.leave(StateCollecting)

	sctx, cancel := context.WithTimeout(ctx, p.cfg.CollectTimeout)
	defer cancel()

	snaps, err := p.provider.Snapshots(sctx, p.cfg.Symbols)
	if err != nil {
		return nil, fmt.Errorf("snapshot collection: %w", err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("snapshot collection: no symbols returned")
	}
	result.Collected = len(snaps)
	return snaps, nil
}

// scoreML extracts features and runs the rule scorer for every collected
// symbol. Failures are per-symbol skips.
func (p *Pipeline) scoreML(ctx context.Context, result *RunResult,
	snaps map[string]types.MarketSnapshot) (map[string]types.FeatureVector, map[string]types.Recommendation) {

	result.enter(ctx, StateScoringML)
	defer result.leave(StateScoringML)

	sctx, cancel := context.WithTimeout(ctx, p.cfg.ScoreTimeout)
	defer cancel()

	var mu sync.Mutex
	fvs := make(map[string]types.FeatureVector, len(snaps))
	recs := make(map[string]types.Recommendation, len(snaps))

	g, gctx := errgroup.WithContext(sctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, snap := range snaps {
		snap := snap
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			fv := p.extractor.Extract(snap)
			rec, err := p.rules.Score(gctx, snap, fv)
			if err != nil {
				logger.Warn(gctx, "Rule scoring failed, skipping symbol", "symbol", snap.Symbol, "error", err)
				return nil
			}
			mu.Lock()
			fvs[snap.Symbol] = fv
			recs[snap.Symbol] = rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.MLScored = len(recs)
	return fvs, recs
}

// retrieveContext gathers documents per symbol. Retrieval failures are
// absorbed: an unreachable retriever degrades the run to rule-only rather
// than failing it.
func (p *Pipeline) retrieveContext(ctx context.Context, result *RunResult,
	snaps map[string]types.MarketSnapshot, fvs map[string]types.FeatureVector) map[string][]types.RetrievedDocument {

	if p.narrative == nil || p.retriever == nil {
		return nil
	}

	result.enter(ctx, StateRetrievingCtx)
	defer result.leave(StateRetrievingCtx)

	sctx, cancel := context.WithTimeout(ctx, p.cfg.RetrievalTimeout)
	defer cancel()

	var mu sync.Mutex
	docs := make(map[string][]types.RetrievedDocument, len(fvs))

	g, gctx := errgroup.WithContext(sctx)
	g.SetLimit(p.cfg.Concurrency)
	for symbol, fv := range fvs {
		symbol, fv := symbol, fv
		snap := snaps[symbol]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			found, err := retrieval.ContextFor(gctx, p.retriever, snap, fv, p.cfg.RetrievalTopK)
			if err != nil {
				logger.Warn(gctx, "Context retrieval failed, symbol degrades to rule-only",
					"symbol", symbol, "error", err)
				return nil
			}
			mu.Lock()
			docs[symbol] = found
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.Retrieved = len(docs)
	return docs
}

// scoreNarrative runs the generative scorer for every symbol that has
// retrieved context. A failed generation is a per-symbol abstention.
func (p *Pipeline) scoreNarrative(ctx context.Context, result *RunResult,
	snaps map[string]types.MarketSnapshot, fvs map[string]types.FeatureVector,
	docs map[string][]types.RetrievedDocument) map[string]types.Recommendation {

	if p.narrative == nil || len(docs) == 0 {
		return nil
	}

	result.enter(ctx, StateScoringNarrative)
	defer result.leave(StateScoringNarrative)

	sctx, cancel := context.WithTimeout(ctx, p.cfg.NarrativeTimeout)
	defer cancel()

	var mu sync.Mutex
	recs := make(map[string]types.Recommendation, len(docs))

	g, gctx := errgroup.WithContext(sctx)
	g.SetLimit(p.cfg.Concurrency)
	for symbol, symbolDocs := range docs {
		symbol, symbolDocs := symbol, symbolDocs
		snap, fv := snaps[symbol], fvs[symbol]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			rec, err := p.narrative.Score(gctx, snap, fv, symbolDocs)
			if err != nil {
				logger.Debug(gctx, "Narrative scorer abstained", "symbol", symbol, "error", err)
				return nil
			}
			mu.Lock()
			recs[symbol] = rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.NarrativeScored = len(recs)
	return recs
}

func (p *Pipeline) combineAndRank(ctx context.Context, result *RunResult,
	snaps map[string]types.MarketSnapshot,
	mlRecs, narrRecs map[string]types.Recommendation) []types.CombinedRecommendation {

	result.enter(ctx, StateCombining)
	defer result.leave(StateCombining)

	// Stable input order: the configured universe, restricted to collected
	// symbols. Ranking ties preserve this order.
	order := make([]string, 0, len(snaps))
	for _, symbol := range p.cfg.Symbols {
		if _, ok := snaps[symbol]; ok {
			order = append(order, symbol)
		}
	}

	combined := combine.Merge(order, mlRecs, narrRecs)
	ranked := combine.Rank(combined)
	result.Combined = len(combined)
	return ranked
}

// persist writes the ranked recommendations. Each insert is independent;
// failures are logged and do not abort the remaining writes.
func (p *Pipeline) persist(ctx context.Context, result *RunResult, ranked []types.CombinedRecommendation) {
	result.enter(ctx, StatePersisting)
	defer result.leave(StatePersisting)

	sctx, cancel := context.WithTimeout(ctx, p.cfg.PersistTimeout)
	defer cancel()

	for _, rec := range ranked {
		if err := p.store.Insert(sctx, result.RunID, rec); err != nil {
			logger.ErrorWithErr(sctx, "Recommendation insert failed", err, "symbol", rec.Symbol)
			continue
		}
		result.Persisted++
		logger.Recommendation(sctx, rec.Symbol, string(rec.Action), rec.Confidence, "combined",
			"consensus", rec.ConsensusScore, "risk", string(rec.RiskLevel), "timeframe", string(rec.Timeframe))
		if p.audit != nil {
			p.audit(result.RunID, rec)
		}
	}
}
