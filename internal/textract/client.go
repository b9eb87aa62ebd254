// Package textract wraps the asynchronous document-analysis provider behind a
// small start/poll interface the scheduler drives.
package textract

import (
	"context"
	"errors"

	"records-backend/internal/blocks"
)

var (
	// ErrUnavailable marks transient provider failures; the scheduler retries
	// them on a later tick.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrInvalidDocument marks documents the provider rejects outright.
	ErrInvalidDocument = errors.New("invalid document")
)

// Status is the provider-reported state of an analysis job.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

// Location addresses a stored page image the provider can read.
type Location struct {
	Bucket string
	Key    string
}

// Result is one poll response. Blocks is populated only on SUCCEEDED;
// Message carries the provider's status message on FAILED.
type Result struct {
	Status  Status
	Blocks  []blocks.Block
	Message string
}

// Client is the provider start/poll surface consumed by the scheduler.
type Client interface {
	// StartAnalysis submits a form-analysis job and returns the provider job id.
	StartAnalysis(ctx context.Context, loc Location) (string, error)

	// GetAnalysis polls a form-analysis job.
	GetAnalysis(ctx context.Context, jobID string) (Result, error)

	// StartTextDetection submits a plain-text detection job.
	StartTextDetection(ctx context.Context, loc Location) (string, error)

	// GetTextDetection polls a text-detection job, accumulating every result
	// chunk once the job has succeeded.
	GetTextDetection(ctx context.Context, jobID string) (Result, error)
}
