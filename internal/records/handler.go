package records

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"records-backend/internal/jobs"
	"records-backend/internal/report"
	"records-backend/internal/shared/server/respond"
	"records-backend/internal/shared/telemetry"
)

const maxUploadSize = 50 << 20 // 50MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches record analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/records/analyze", h.analyze)
	rg.GET("/records/analyses/:id", h.result)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	kind := jobs.Kind(c.DefaultPostForm("kind", string(jobs.KindForm)))
	if kind != jobs.KindForm && kind != jobs.KindText {
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind must be form or text", nil)
		return
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "pdf file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	sub, err := h.Svc.Submit(c.Request.Context(), kind, fileHeader.Filename, pdfBytes)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPDF):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, toSubmitResponse(sub))
}

func (h *Handler) result(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid analysis id", nil)
		return
	}

	res, err := h.Svc.Result(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	if c.Query("format") == "csv" {
		h.writeCSV(c, res)
		return
	}

	respond.JSON(c, http.StatusOK, toResultResponse(res))
}

func (h *Handler) writeCSV(c *gin.Context, res Result) {
	if res.Kind != jobs.KindForm {
		respond.Error(c, http.StatusBadRequest, "validation_error", "csv export is only available for form analyses", nil)
		return
	}
	if res.Status != StatusDone {
		respond.Error(c, http.StatusConflict, "not_ready", "analysis is not complete", nil)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=\"records_"+strconv.FormatInt(res.JobID, 10)+".csv\"")
	c.Status(http.StatusOK)
	if err := report.WriteCSV(c.Writer, res.Records); err != nil {
		// Headers are already out; all we can do is log.
		telemetry.Error("records.csv_write_failed", map[string]any{
			"analysis_id": res.JobID,
			"error":       err.Error(),
		})
	}
}
