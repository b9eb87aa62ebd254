package records

import "records-backend/internal/report"

// SubmitResponse is the outward-facing representation of an accepted upload.
type SubmitResponse struct {
	JobID int64 `json:"jobId"`
	Pages int   `json:"pages"`
}

func toSubmitResponse(sub Submission) SubmitResponse {
	return SubmitResponse{JobID: sub.JobID, Pages: sub.Pages}
}

// PageResponse is the outward status of one page.
type PageResponse struct {
	Page   int    `json:"page"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ResultResponse is the outward-facing state of an analysis.
type ResultResponse struct {
	JobID   int64           `json:"jobId"`
	Kind    string          `json:"kind"`
	Status  string          `json:"status"`
	Pages   []PageResponse  `json:"pages"`
	Records []report.Record `json:"records,omitempty"`
	Texts   []string        `json:"texts,omitempty"`
}

func toResultResponse(res Result) ResultResponse {
	out := ResultResponse{
		JobID:   res.JobID,
		Kind:    string(res.Kind),
		Status:  res.Status,
		Records: res.Records,
		Texts:   res.Texts,
	}
	for _, p := range res.Pages {
		out.Pages = append(out.Pages, PageResponse{
			Page:   p.Page,
			Status: string(p.Status),
			Reason: p.Reason,
		})
	}
	return out
}
