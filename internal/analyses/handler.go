package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/extract"
	"placement-backend/internal/shared/server/middleware"
	"placement-backend/internal/shared/server/respond"
	"placement-backend/internal/usage"
)

const maxUploadSize = 5 << 20 // 5MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/analyses", h.analyze)
	rg.GET("/resume/analyses/latest", h.latest)
	rg.GET("/resume/analyses", h.list)
}

type analysisResponse struct {
	Analysis
	Warnings []string `json:"warnings,omitempty"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")

	analysis, err := h.Svc.Analyze(c.Request.Context(), userID, fileHeader.Filename, mimeType, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileSyncFailed):
			// Partial success: the analysis was saved; only the profile
			// update failed.
			c.Set("analysisId", analysis.ID)
			respond.JSON(c, http.StatusCreated, analysisResponse{
				Analysis: analysis,
				Warnings: []string{"analysis saved, but the profile update failed"},
			})
		case errors.Is(err, extract.ErrUnsupportedFileType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "please upload a PDF or DOCX resume", nil)
		case errors.Is(err, extract.ErrExtractionFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not read the file; please re-upload a valid PDF or DOCX resume", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "analysis limit reached for this period", nil)
		case errors.Is(err, ErrPersistenceFailed):
			respond.Error(c, http.StatusInternalServerError, "persistence_failed", "failed to save the analysis; please try again", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze resume", nil)
		}
		return
	}

	c.Set("analysisId", analysis.ID)
	respond.JSON(c, http.StatusCreated, analysisResponse{Analysis: analysis})
}

func (h *Handler) latest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	analysis, err := h.Svc.Latest(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no analysis found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		return
	}

	respond.JSON(c, http.StatusOK, analysisResponse{Analysis: analysis})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	out := make([]analysisResponse, 0, len(list))
	for _, analysis := range list {
		out = append(out, analysisResponse{Analysis: analysis})
	}
	respond.JSON(c, http.StatusOK, out)
}
