package handler

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// ExportHandler exposes payroll export generation and signed downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportRequest selects the summaries to render.
type ExportRequest struct {
	Year          int                 `json:"year" binding:"required"`
	Month         int                 `json:"month" binding:"required"`
	CycleTimingID string              `json:"cycle_timing_id"`
	Format        models.ReportFormat `json:"format" binding:"required"`
}

// Generate godoc
// @Summary Render a cycle's summaries to CSV or PDF
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body ExportRequest true "Export payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /payroll/summaries/export [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if !req.Format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be 1-12"))
		return
	}

	claims := claimsFromContext(c)
	job := &models.ExportJob{
		ID:            uuid.NewString(),
		SalaryYear:    req.Year,
		SalaryMonth:   req.Month,
		CycleTimingID: req.CycleTimingID,
		Format:        req.Format,
		RequestedAt:   time.Now().UTC(),
	}
	if claims != nil {
		job.RequestedBy = claims.UserID
	}

	result, err := h.exports.Generate(c.Request.Context(), job)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate export"))
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Param("token")
	_, relPath, _, err := h.exports.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token"))
		return
	}

	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := "application/octet-stream"
	switch filepath.Ext(relPath) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
