package pipeline

import (
	"context"
	"fmt"
	"time"

	"stock-advisor/internal/logger"
)

// Scheduler fires one pipeline run per day at a fixed wall-clock time in the
// market timezone (pre-market by default).
type Scheduler struct {
	pipe *Pipeline
	loc  *time.Location
	hour int
	min  int

	// afterRun, when set, is called with every finished run's result.
	afterRun func(ctx context.Context, result *RunResult)
}

// NewScheduler parses dailyTime ("HH:MM") against the named timezone.
func NewScheduler(pipe *Pipeline, dailyTime, timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	var hour, min int
	if _, err := fmt.Sscanf(dailyTime, "%d:%d", &hour, &min); err != nil {
		return nil, fmt.Errorf("parse daily time %q: %w", dailyTime, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return nil, fmt.Errorf("daily time %q out of range", dailyTime)
	}
	return &Scheduler{pipe: pipe, loc: loc, hour: hour, min: min}, nil
}

func (s *Scheduler) SetAfterRun(fn func(ctx context.Context, result *RunResult)) {
	s.afterRun = fn
}

// next returns the first scheduled instant strictly after now.
func (s *Scheduler) next(now time.Time) time.Time {
	local := now.In(s.loc)
	fire := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.min, 0, 0, s.loc)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// Loop blocks until ctx is cancelled, running the pipeline once per scheduled
// fire. A FAILED run is reported and the loop keeps going; the next day's
// trigger produces the next run.
func (s *Scheduler) Loop(ctx context.Context) error {
	for {
		fire := s.next(time.Now())
		logger.Info(ctx, "Next scheduled run", "at", fire.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(fire))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		result, err := s.pipe.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		result.Report(ctx)
		if s.afterRun != nil {
			s.afterRun(ctx, result)
		}
	}
}
