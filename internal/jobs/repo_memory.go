package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"records-backend/internal/blocks"
)

// MemoryRepo stores jobs in memory and is safe for concurrent use. It backs
// dev mode without a database and the scheduler/handler tests.
type MemoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	analyses   map[int64]AnalysisJob
	pages      map[int64]PageJob
	pageOrder  []int64
	timeSource func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		analyses:   make(map[int64]AnalysisJob),
		pages:      make(map[int64]PageJob),
		timeSource: func() time.Time { return time.Now().UTC() },
	}
}

// CreateAnalysis stores a new analysis job.
func (r *MemoryRepo) CreateAnalysis(ctx context.Context, kind Kind, note string) (AnalysisJob, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job := AnalysisJob{ID: r.nextID, Kind: kind, Note: note, CreatedAt: r.timeSource()}
	r.analyses[job.ID] = job
	return job, nil
}

// GetAnalysis returns an analysis job by id.
func (r *MemoryRepo) GetAnalysis(ctx context.Context, id int64) (AnalysisJob, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.analyses[id]
	if !ok {
		return AnalysisJob{}, ErrNotFound
	}
	return job, nil
}

// CreatePage stores a new page job.
func (r *MemoryRepo) CreatePage(ctx context.Context, page PageJob) (PageJob, error) {
	if err := ctx.Err(); err != nil {
		return PageJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	page.ID = r.nextID
	page.CreatedAt = r.timeSource()
	r.pages[page.ID] = page
	r.pageOrder = append(r.pageOrder, page.ID)
	return page, nil
}

// ListPages returns all page jobs for an analysis, page ascending.
func (r *MemoryRepo) ListPages(ctx context.Context, analysisID int64) ([]PageJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PageJob
	for _, id := range r.pageOrder {
		if p := r.pages[id]; p.AnalysisID == analysisID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out, nil
}

// NextPending returns one claimable pending page of the given kind.
func (r *MemoryRepo) NextPending(ctx context.Context, kind Kind) (PageJob, error) {
	if err := ctx.Err(); err != nil {
		return PageJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.pageOrder {
		p := r.pages[id]
		if p.Kind == kind && p.ProviderJobID == nil && p.HasFile() {
			return p, nil
		}
	}
	return PageJob{}, ErrNotFound
}

// NextSubmitted returns the oldest submitted page of the given kind.
func (r *MemoryRepo) NextSubmitted(ctx context.Context, kind Kind) (PageJob, error) {
	if err := ctx.Err(); err != nil {
		return PageJob{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := r.pages[id]
		if p.Kind == kind && p.Status() == StatusSubmitted {
			return p, nil
		}
	}
	return PageJob{}, ErrNotFound
}

// ClaimSubmitted sets the provider job id iff it is still unset.
func (r *MemoryRepo) ClaimSubmitted(ctx context.Context, pageID int64, providerJobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[pageID]
	if !ok || p.ProviderJobID != nil {
		return false, nil
	}
	p.ProviderJobID = &providerJobID
	r.pages[pageID] = p
	return true, nil
}

// StoreBlocks sets the raw block graph iff it is still unset.
func (r *MemoryRepo) StoreBlocks(ctx context.Context, pageID int64, list []blocks.Block) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[pageID]
	if !ok || p.Blocks != nil {
		return false, nil
	}
	if list == nil {
		list = []blocks.Block{}
	}
	p.Blocks = list
	r.pages[pageID] = p
	return true, nil
}

// MarkFailed records a terminal provider failure.
func (r *MemoryRepo) MarkFailed(ctx context.Context, pageID int64, reason string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[pageID]
	if !ok || p.Blocks != nil || p.FailedAt != nil {
		return false, nil
	}
	now := r.timeSource()
	p.FailedAt = &now
	p.FailureReason = reason
	r.pages[pageID] = p
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
