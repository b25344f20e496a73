package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// ScanHandler exposes the attendance scan endpoint.
type ScanHandler struct {
	scans *service.ScanService
}

// NewScanHandler constructs ScanHandler.
func NewScanHandler(scans *service.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

// Record godoc
// @Summary Record an attendance scan
// @Description Toggles IN/OUT for the operator's department; a dangling
// @Description session in another department is auto-closed first.
// @Tags Scans
// @Accept json
// @Produce json
// @Param payload body service.RecordScanRequest true "Scan payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /scans [post]
func (h *ScanHandler) Record(c *gin.Context) {
	var req service.RecordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.scans.RecordScan(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
