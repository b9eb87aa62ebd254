package jobs

import (
	"context"

	"records-backend/internal/blocks"
)

// Repo defines persistence operations for analysis and page jobs.
//
// The claim/store/fail operations are conditional single-statement updates
// guarded by the same predicate the candidate was selected with, so two
// scheduler instances racing on one row cannot both apply a transition; the
// loser sees claimed=false and drops its work.
type Repo interface {
	CreateAnalysis(ctx context.Context, kind Kind, note string) (AnalysisJob, error)
	GetAnalysis(ctx context.Context, id int64) (AnalysisJob, error)

	CreatePage(ctx context.Context, page PageJob) (PageJob, error)
	ListPages(ctx context.Context, analysisID int64) ([]PageJob, error)

	// NextPending returns one pending page of the given kind that has a file
	// location and no provider job id. No ordering is guaranteed.
	// Returns ErrNotFound when no such page exists.
	NextPending(ctx context.Context, kind Kind) (PageJob, error)

	// NextSubmitted returns the oldest submitted page (id ascending) of the
	// given kind that has no raw data and has not failed.
	NextSubmitted(ctx context.Context, kind Kind) (PageJob, error)

	// ClaimSubmitted records the provider job id iff the page is still
	// unsubmitted. A provider job id, once set, never changes.
	ClaimSubmitted(ctx context.Context, pageID int64, providerJobID string) (claimed bool, err error)

	// StoreBlocks records the fetched block graph iff the page has none yet.
	// Raw data, once set, is never overwritten.
	StoreBlocks(ctx context.Context, pageID int64, list []blocks.Block) (claimed bool, err error)

	// MarkFailed records a terminal provider failure iff the page is neither
	// fetched nor already failed.
	MarkFailed(ctx context.Context, pageID int64, reason string) (claimed bool, err error)
}
