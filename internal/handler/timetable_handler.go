package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

type runReader interface {
	ListByLabel(ctx context.Context, label string) ([]models.TimetableRun, error)
	ListSlots(ctx context.Context, runID string) ([]models.TimetableSlot, error)
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes the generation and run endpoints.
type TimetableHandler struct {
	service timetableGenerator
	runs    runReader
	cache   *cache.ResultCache
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewTimetableHandler constructs the handler. Runs and cache may be nil when
// persistence or caching is disabled; exporters are nil when downloads are
// disabled.
func NewTimetableHandler(svc timetableGenerator, runs runReader, resultCache *cache.ResultCache, exportEnabled bool, logger *zap.Logger) *TimetableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &TimetableHandler{
		service: svc,
		runs:    runs,
		cache:   resultCache,
		logger:  logger,
	}
	if exportEnabled {
		h.csv = export.NewCSVExporter()
		h.pdf = export.NewPDFExporter()
	}
	return h
}

// Generate runs one timetable solve. The optional format query parameter
// renders a successful schedule as csv or pdf instead of JSON.
func (h *TimetableHandler) Generate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable request body"))
		return
	}

	format := c.Query("format")

	var cacheKey string
	if h.cache != nil && format == "" {
		cacheKey = h.cache.Key(body)
		if cached, cacheErr := h.cache.Get(c.Request.Context(), cacheKey); cacheErr == nil && cached != nil {
			var resp dto.GenerateTimetableResponse
			if json.Unmarshal(cached, &resp) == nil {
				response.OK(c, &resp)
				return
			}
		} else if cacheErr != nil {
			h.logger.Warn("result cache lookup failed", zap.Error(cacheErr))
		}
	}

	var req dto.GenerateTimetableRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format != "" {
		h.renderExport(c, format, resp)
		return
	}

	if cacheKey != "" {
		if encoded, marshalErr := json.Marshal(resp); marshalErr == nil {
			if cacheErr := h.cache.Set(c.Request.Context(), cacheKey, encoded); cacheErr != nil {
				h.logger.Warn("result cache store failed", zap.Error(cacheErr))
			}
		}
	}
	response.OK(c, resp)
}

func (h *TimetableHandler) renderExport(c *gin.Context, format string, resp *dto.GenerateTimetableResponse) {
	if h.csv == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schedule export is disabled"))
		return
	}
	if resp.Status != "Success" {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot export a %s result", resp.Status)))
		return
	}
	data := scheduleDataset(resp.Schedule)
	switch format {
	case "csv":
		raw, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timetable.csv"`)
		c.Data(http.StatusOK, "text/csv", raw)
	case "pdf":
		raw, err := h.pdf.Render(data, "Weekly Timetable")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timetable.pdf"`)
		c.Data(http.StatusOK, "application/pdf", raw)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format)))
	}
}

func scheduleDataset(records []models.ScheduleRecord) export.Dataset {
	headers := []string{"Day", "Time", "Course", "Type", "Section", "Room", "Instructor"}
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"Day":        record.Day,
			"Time":       record.TimeSlot,
			"Course":     record.CourseID,
			"Type":       record.Type,
			"Section":    record.SectionID,
			"Room":       record.RoomID,
			"Instructor": record.InstructorID,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// ListRuns returns persisted run versions for a label.
func (h *TimetableHandler) ListRuns(c *gin.Context) {
	var query dto.TimetableRunQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run query"))
		return
	}
	if query.Label == "" {
		query.Label = "default"
	}
	runs, err := h.runs.ListByLabel(c.Request.Context(), query.Label)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable runs"))
		return
	}
	response.OK(c, runs)
}

// GetRunSlots returns the stored schedule rows of one run.
func (h *TimetableHandler) GetRunSlots(c *gin.Context) {
	runID := c.Param("id")
	slots, err := h.runs.ListSlots(c.Request.Context(), runID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list run slots"))
		return
	}
	response.OK(c, slots)
}

// DeleteRun removes a draft run.
func (h *TimetableHandler) DeleteRun(c *gin.Context) {
	if err := h.runs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found or not a draft"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable run"))
		return
	}
	response.NoContent(c)
}
