package jobs

import (
	"time"

	"records-backend/internal/blocks"
)

// Kind selects which provider operation a job runs.
type Kind string

const (
	// KindForm runs form analysis and yields structured records.
	KindForm Kind = "form"
	// KindText runs plain-text detection and yields page text.
	KindText Kind = "text"
)

// Status is a page job's lifecycle state. It is derived from the row's
// nullable columns, not stored: transitions happen by filling columns in,
// and a filled column is never cleared or overwritten.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusFetched   Status = "fetched"
	StatusFailed    Status = "failed"
)

// AnalysisJob is one submitted document, owning one PageJob per page.
// It has no state of its own; readers derive it from the children.
type AnalysisJob struct {
	ID        int64
	Kind      Kind
	Note      string
	CreatedAt time.Time
}

// PageJob tracks one page of one document through the provider.
// ProviderJobID is nil until submitted, Blocks nil until fetched, and
// FailedAt nil unless the provider reported a terminal failure.
type PageJob struct {
	ID            int64
	AnalysisID    int64
	Page          int
	Kind          Kind
	ProviderJobID *string
	Blocks        []blocks.Block
	FileBucket    string
	FileKey       string
	FailedAt      *time.Time
	FailureReason string
	CreatedAt     time.Time
}

// Status derives the lifecycle state, checking the most-terminal condition
// first.
func (p PageJob) Status() Status {
	switch {
	case p.FailedAt != nil:
		return StatusFailed
	case p.Blocks != nil:
		return StatusFetched
	case p.ProviderJobID != nil:
		return StatusSubmitted
	default:
		return StatusPending
	}
}

// HasFile reports whether the page has a stored file the provider can read.
func (p PageJob) HasFile() bool {
	return p.FileBucket != "" && p.FileKey != ""
}
