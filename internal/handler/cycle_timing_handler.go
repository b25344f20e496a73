package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// CycleTimingHandler exposes payroll cycle timing templates.
type CycleTimingHandler struct {
	cycles *service.CycleService
}

// NewCycleTimingHandler constructs CycleTimingHandler.
func NewCycleTimingHandler(cycles *service.CycleService) *CycleTimingHandler {
	return &CycleTimingHandler{cycles: cycles}
}

// List godoc
// @Summary List cycle timings
// @Tags CycleTimings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cycle-timings [get]
func (h *CycleTimingHandler) List(c *gin.Context) {
	timings, err := h.cycles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timings, nil)
}

// Get godoc
// @Summary Get one cycle timing
// @Tags CycleTimings
// @Produce json
// @Param id path string true "Cycle timing ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cycle-timings/{id} [get]
func (h *CycleTimingHandler) Get(c *gin.Context) {
	timing, err := h.cycles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timing, nil)
}

// Create godoc
// @Summary Create a cycle timing
// @Tags CycleTimings
// @Accept json
// @Produce json
// @Param payload body service.CreateCycleTimingRequest true "Cycle timing payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cycle-timings [post]
func (h *CycleTimingHandler) Create(c *gin.Context) {
	var req service.CreateCycleTimingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timing, err := h.cycles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timing)
}
