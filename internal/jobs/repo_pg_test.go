package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"records-backend/internal/blocks"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func pageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "analysis_id", "page", "kind", "provider_job_id", "raw_blocks",
		"file_bucket", "file_key", "failed_at", "failure_reason", "created_at",
	})
}

func TestPGRepoCreateAnalysis(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO analysis_jobs").
		WithArgs("form", "report.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	job, err := repo.CreateAnalysis(context.Background(), KindForm, "report.pdf")
	if err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	if job.ID != 7 || job.Kind != KindForm || job.Note != "report.pdf" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetAnalysisNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, kind").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "note", "created_at"}))

	if _, err := repo.GetAnalysis(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCreatePage(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO page_jobs").
		WithArgs(int64(7), 2, "form", "reports", "analysis_7_page_2.png").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), now))

	page, err := repo.CreatePage(context.Background(), PageJob{
		AnalysisID: 7,
		Page:       2,
		Kind:       KindForm,
		FileBucket: "reports",
		FileKey:    "analysis_7_page_2.png",
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if page.ID != 12 {
		t.Fatalf("expected id 12, got %d", page.ID)
	}
}

func TestPGRepoNextPendingSelectsUnsubmittedWithFile(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`provider_job_id IS NULL`).
		WithArgs("form").
		WillReturnRows(pageRows().AddRow(
			int64(12), int64(7), 2, "form", nil, nil, "reports", "page.png", nil, nil, now,
		))

	page, err := repo.NextPending(context.Background(), KindForm)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if page.Status() != StatusPending {
		t.Fatalf("expected pending, got %s", page.Status())
	}
	if !page.HasFile() {
		t.Fatalf("expected file location")
	}
}

func TestPGRepoNextSubmittedOrdersByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`ORDER BY id ASC`).
		WithArgs("text").
		WillReturnRows(pageRows().AddRow(
			int64(3), int64(1), 1, "text", "prov-1", nil, "reports", "page.png", nil, nil, now,
		))

	page, err := repo.NextSubmitted(context.Background(), KindText)
	if err != nil {
		t.Fatalf("NextSubmitted: %v", err)
	}
	if page.Status() != StatusSubmitted {
		t.Fatalf("expected submitted, got %s", page.Status())
	}
	if *page.ProviderJobID != "prov-1" {
		t.Fatalf("unexpected provider job id: %s", *page.ProviderJobID)
	}
}

func TestPGRepoNextSubmittedEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`ORDER BY id ASC`).
		WithArgs("form").
		WillReturnRows(pageRows())

	if _, err := repo.NextSubmitted(context.Background(), KindForm); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoClaimSubmitted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE page_jobs`).
		WithArgs("prov-1", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.ClaimSubmitted(context.Background(), 12, "prov-1")
	if err != nil {
		t.Fatalf("ClaimSubmitted: %v", err)
	}
	if !claimed {
		t.Fatalf("expected claim to win")
	}
}

func TestPGRepoClaimSubmittedLost(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE page_jobs`).
		WithArgs("prov-2", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimSubmitted(context.Background(), 12, "prov-2")
	if err != nil {
		t.Fatalf("ClaimSubmitted: %v", err)
	}
	if claimed {
		t.Fatalf("guarded update affecting zero rows must report a lost claim")
	}
}

func TestPGRepoStoreBlocks(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`raw_blocks IS NULL`).
		WithArgs(sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.StoreBlocks(context.Background(), 12, []blocks.Block{{ID: "b1", Type: blocks.TypeWord}})
	if err != nil {
		t.Fatalf("StoreBlocks: %v", err)
	}
	if !claimed {
		t.Fatalf("expected store to win")
	}
}

func TestPGRepoMarkFailedLost(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`failed_at IS NULL`).
		WithArgs("provider failure", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.MarkFailed(context.Background(), 12, "provider failure")
	if err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if claimed {
		t.Fatalf("already-settled page must report a lost claim")
	}
}

func TestScanPageDecodesBlocks(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	raw := []byte(`[{"id":"b1","type":"WORD","text":"Badge"}]`)
	mock.ExpectQuery(`FROM page_jobs`).
		WithArgs(int64(7)).
		WillReturnRows(pageRows().AddRow(
			int64(12), int64(7), 1, "form", "prov-1", raw, "reports", "page.png", nil, nil, now,
		))

	pages, err := repo.ListPages(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Status() != StatusFetched {
		t.Fatalf("expected fetched, got %s", pages[0].Status())
	}
	if len(pages[0].Blocks) != 1 || pages[0].Blocks[0].Text != "Badge" {
		t.Fatalf("unexpected blocks: %+v", pages[0].Blocks)
	}
}

func TestScanPageEmptyBlockListStillFetched(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM page_jobs`).
		WithArgs(int64(7)).
		WillReturnRows(pageRows().AddRow(
			int64(12), int64(7), 1, "form", "prov-1", []byte(`[]`), "reports", "page.png", nil, nil, now,
		))

	pages, err := repo.ListPages(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if pages[0].Blocks == nil {
		t.Fatalf("empty stored result must decode to a non-nil slice")
	}
	if pages[0].Status() != StatusFetched {
		t.Fatalf("expected fetched, got %s", pages[0].Status())
	}
}
