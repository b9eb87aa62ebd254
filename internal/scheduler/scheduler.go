// Package scheduler drives page jobs through the provider lifecycle with
// independent periodic tasks. Each task claims at most one job per tick and
// the tick body runs inline in its loop, so ticks of one task never overlap.
// Tasks share nothing in-process; every transition is an atomic conditional
// update on the jobs repository.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"records-backend/internal/jobs"
	"records-backend/internal/shared/telemetry"
	"records-backend/internal/textract"
)

const (
	defaultSubmitInterval = 15 * time.Second
	defaultFetchInterval  = 15 * time.Second
	defaultCallTimeout    = 60 * time.Second
	defaultMaxBackoff     = 4 * time.Minute
)

// Scheduler runs the submit and fetch tasks for both job kinds.
type Scheduler struct {
	Jobs     jobs.Repo
	Provider textract.Client

	SubmitInterval time.Duration
	FetchInterval  time.Duration

	// CallTimeout bounds each provider call; a timed-out call counts as a
	// transient failure and the claim is retried on a later tick.
	CallTimeout time.Duration

	// MaxBackoff caps the stretched interval after consecutive transient
	// failures. Any clean tick resets the interval.
	MaxBackoff time.Duration
}

// Run starts all tasks and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	tasks := []struct {
		name     string
		interval time.Duration
		tick     func(context.Context) error
	}{
		{"submit.form", s.submitInterval(), func(ctx context.Context) error { return s.submitTick(ctx, jobs.KindForm) }},
		{"fetch.form", s.fetchInterval(), func(ctx context.Context) error { return s.fetchTick(ctx, jobs.KindForm) }},
		{"submit.text", s.submitInterval(), func(ctx context.Context) error { return s.submitTick(ctx, jobs.KindText) }},
		{"fetch.text", s.fetchInterval(), func(ctx context.Context) error { return s.fetchTick(ctx, jobs.KindText) }},
	}
	for _, task := range tasks {
		wg.Add(1)
		go func(name string, interval time.Duration, tick func(context.Context) error) {
			defer wg.Done()
			s.runTask(ctx, name, interval, tick)
		}(task.name, task.interval, task.tick)
	}
	wg.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, name string, interval time.Duration, tick func(context.Context) error) {
	delay := interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := tick(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay = nextBackoff(delay, interval, s.maxBackoff())
			telemetry.Error("scheduler.tick_failed", map[string]any{
				"task":       name,
				"error":      err.Error(),
				"next_delay": delay.String(),
			})
		} else {
			delay = interval
		}
		timer.Reset(delay)
	}
}

// submitTick claims one pending page and starts its provider job. A lost
// claim after a successful start is logged and dropped; the provider job id
// is discarded.
func (s *Scheduler) submitTick(ctx context.Context, kind jobs.Kind) error {
	page, err := s.Jobs.NextPending(ctx, kind)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("next pending: %w", err)
	}

	loc := textract.Location{Bucket: page.FileBucket, Key: page.FileKey}
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	var providerJobID string
	switch kind {
	case jobs.KindText:
		providerJobID, err = s.Provider.StartTextDetection(callCtx, loc)
	default:
		providerJobID, err = s.Provider.StartAnalysis(callCtx, loc)
	}
	if err != nil {
		return fmt.Errorf("start page job %d: %w", page.ID, err)
	}

	claimed, err := s.Jobs.ClaimSubmitted(ctx, page.ID, providerJobID)
	if err != nil {
		return fmt.Errorf("claim page job %d: %w", page.ID, err)
	}
	if !claimed {
		telemetry.Info("scheduler.claim_lost", map[string]any{
			"page_job_id":     page.ID,
			"provider_job_id": providerJobID,
		})
		return nil
	}
	telemetry.Info("scheduler.submitted", map[string]any{
		"page_job_id":     page.ID,
		"analysis_id":     page.AnalysisID,
		"page":            page.Page,
		"kind":            string(kind),
		"provider_job_id": providerJobID,
	})
	return nil
}

// fetchTick polls the oldest submitted page. SUCCEEDED stores the block
// graph, FAILED marks the page terminally failed, IN_PROGRESS leaves the row
// untouched for the next tick.
func (s *Scheduler) fetchTick(ctx context.Context, kind jobs.Kind) error {
	page, err := s.Jobs.NextSubmitted(ctx, kind)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("next submitted: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	var result textract.Result
	switch kind {
	case jobs.KindText:
		result, err = s.Provider.GetTextDetection(callCtx, *page.ProviderJobID)
	default:
		result, err = s.Provider.GetAnalysis(callCtx, *page.ProviderJobID)
	}
	if err != nil {
		return fmt.Errorf("poll page job %d: %w", page.ID, err)
	}

	switch result.Status {
	case textract.StatusSucceeded:
		claimed, err := s.Jobs.StoreBlocks(ctx, page.ID, result.Blocks)
		if err != nil {
			return fmt.Errorf("store blocks for page job %d: %w", page.ID, err)
		}
		telemetry.Info("scheduler.fetched", map[string]any{
			"page_job_id": page.ID,
			"analysis_id": page.AnalysisID,
			"page":        page.Page,
			"kind":        string(kind),
			"blocks":      len(result.Blocks),
			"claimed":     claimed,
		})
	case textract.StatusFailed:
		claimed, err := s.Jobs.MarkFailed(ctx, page.ID, result.Message)
		if err != nil {
			return fmt.Errorf("mark page job %d failed: %w", page.ID, err)
		}
		telemetry.Error("scheduler.provider_failed", map[string]any{
			"page_job_id": page.ID,
			"analysis_id": page.AnalysisID,
			"page":        page.Page,
			"kind":        string(kind),
			"reason":      result.Message,
			"claimed":     claimed,
		})
	default:
		telemetry.Info("scheduler.in_progress", map[string]any{
			"page_job_id": page.ID,
			"kind":        string(kind),
		})
	}
	return nil
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	next := current * 2
	if next < base {
		next = base
	}
	if next > max {
		next = max
	}
	return next
}

func (s *Scheduler) submitInterval() time.Duration {
	if s.SubmitInterval > 0 {
		return s.SubmitInterval
	}
	return defaultSubmitInterval
}

func (s *Scheduler) fetchInterval() time.Duration {
	if s.FetchInterval > 0 {
		return s.FetchInterval
	}
	return defaultFetchInterval
}

func (s *Scheduler) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return defaultCallTimeout
}

func (s *Scheduler) maxBackoff() time.Duration {
	if s.MaxBackoff > 0 {
		return s.MaxBackoff
	}
	return defaultMaxBackoff
}
