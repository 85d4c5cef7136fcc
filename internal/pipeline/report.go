package pipeline

import (
	"context"
	"time"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// RunResult is the summary of one pipeline run.
type RunResult struct {
	RunID    string
	State    State
	Err      error
	Started  time.Time
	Finished time.Time

	Collected       int
	MLScored        int
	Retrieved       int
	NarrativeScored int
	Combined        int
	Persisted       int

	Recommendations []types.CombinedRecommendation

	stageStarted   time.Time
	StageDurations map[State]time.Duration
}

func newRunResult(runID string) *RunResult {
	return &RunResult{
		RunID:          runID,
		Started:        time.Now(),
		StageDurations: make(map[State]time.Duration),
	}
}

func (r *RunResult) enter(ctx context.Context, s State) {
	r.State = s
	r.stageStarted = time.Now()
	logger.Stage(ctx, r.RunID, string(s))
}

func (r *RunResult) leave(s State) {
	r.StageDurations[s] = time.Since(r.stageStarted)
}

func (r *RunResult) complete(ranked []types.CombinedRecommendation) {
	r.State = StateComplete
	r.Recommendations = ranked
	r.Finished = time.Now()
}

func (r *RunResult) fail(ctx context.Context, at State, err error) *RunResult {
	r.StageDurations[at] = time.Since(r.stageStarted)
	r.State = StateFailed
	r.Err = err
	r.Finished = time.Now()
	logger.ErrorWithErr(ctx, "Pipeline run failed", err, "run_id", r.RunID, "stage", string(at))
	return r
}

func (r *RunResult) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

// Report logs the per-run summary with stage counts and durations.
func (r *RunResult) Report(ctx context.Context) {
	fields := []any{
		"run_id", r.RunID,
		"state", string(r.State),
		"duration", r.Duration().String(),
		"collected", r.Collected,
		"ml_scored", r.MLScored,
		"retrieved", r.Retrieved,
		"narrative_scored", r.NarrativeScored,
		"combined", r.Combined,
		"persisted", r.Persisted,
	}
	for state, d := range r.StageDurations {
		fields = append(fields, "stage_"+string(state), d.String())
	}

	if r.State == StateFailed {
		logger.Error(ctx, "Pipeline run report", fields...)
		return
	}
	logger.Info(ctx, "Pipeline run report", fields...)
}
