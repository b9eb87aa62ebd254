package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"records-backend/internal/jobs"
	"records-backend/internal/report"
	"records-backend/internal/shared/storage/object"
	"records-backend/internal/shared/telemetry"
)

// ErrInvalidPDF marks an upload that does not parse as a PDF or has no pages.
var ErrInvalidPDF = errors.New("invalid pdf")

// Service contains business logic for record analyses: splitting an uploaded
// document into per-page jobs and assembling results once the scheduler has
// run them through the provider.
type Service struct {
	Jobs     jobs.Repo
	Store    object.Store
	Renderer PageRenderer
}

// Submission describes an accepted upload.
type Submission struct {
	JobID int64
	Pages int
}

// Submit validates the PDF, renders one image per page, saves the images to
// object storage, and records one pending page job each. The scheduler picks
// the pages up from there.
func (s *Service) Submit(ctx context.Context, kind jobs.Kind, fileName string, pdfBytes []byte) (Submission, error) {
	images, err := s.Renderer.RenderPages(pdfBytes)
	if err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if len(images) == 0 {
		return Submission{}, fmt.Errorf("%w: document has no pages", ErrInvalidPDF)
	}

	analysis, err := s.Jobs.CreateAnalysis(ctx, kind, fileName)
	if err != nil {
		return Submission{}, err
	}

	for i, img := range images {
		name := fmt.Sprintf("analysis_%d_page_%d.png", analysis.ID, i+1)
		loc, err := s.Store.Save(ctx, name, bytes.NewReader(img))
		if err != nil {
			return Submission{}, fmt.Errorf("save page %d: %w", i+1, err)
		}
		_, err = s.Jobs.CreatePage(ctx, jobs.PageJob{
			AnalysisID: analysis.ID,
			Page:       i + 1,
			Kind:       kind,
			FileBucket: loc.Bucket,
			FileKey:    loc.Key,
		})
		if err != nil {
			return Submission{}, fmt.Errorf("create page %d: %w", i+1, err)
		}
	}

	telemetry.Info("records.submitted", map[string]any{
		"analysis_id": analysis.ID,
		"kind":        string(kind),
		"pages":       len(images),
	})

	return Submission{JobID: analysis.ID, Pages: len(images)}, nil
}

// PageState is the outward status of one page.
type PageState struct {
	Page   int
	Status jobs.Status
	Reason string
}

// Aggregate states of an analysis, derived from its pages.
const (
	StatusInProgress = "in_progress"
	StatusFailed     = "failed"
	StatusDone       = "done"
)

// Result is the aggregate state of an analysis. Records is populated for
// form analyses and Texts for text analyses, both in page order, and only
// once every page is fetched.
type Result struct {
	JobID   int64
	Kind    jobs.Kind
	Status  string
	Pages   []PageState
	Records []report.Record
	Texts   []string
}

// Result loads an analysis and derives its aggregate state. Any failed page
// fails the analysis; otherwise it stays in flight until every page is
// fetched, at which point the per-page outputs are built from the stored
// block graphs.
func (s *Service) Result(ctx context.Context, id int64) (Result, error) {
	analysis, err := s.Jobs.GetAnalysis(ctx, id)
	if err != nil {
		return Result{}, err
	}

	pages, err := s.Jobs.ListPages(ctx, id)
	if err != nil {
		return Result{}, err
	}

	res := Result{JobID: analysis.ID, Kind: analysis.Kind}

	fetched := 0
	failed := false
	for _, p := range pages {
		st := p.Status()
		res.Pages = append(res.Pages, PageState{Page: p.Page, Status: st, Reason: p.FailureReason})
		switch st {
		case jobs.StatusFailed:
			failed = true
		case jobs.StatusFetched:
			fetched++
		}
	}

	switch {
	case failed:
		res.Status = StatusFailed
	case len(pages) == 0 || fetched < len(pages):
		res.Status = StatusInProgress
	default:
		res.Status = StatusDone
		for _, p := range pages {
			if analysis.Kind == jobs.KindText {
				res.Texts = append(res.Texts, report.PlainText(p.Blocks))
			} else {
				res.Records = append(res.Records, report.BuildRecord(p.Blocks))
			}
		}
	}

	return res, nil
}
