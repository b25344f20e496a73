package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/jobs"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// BatchJobType tags queued batch computations.
const BatchJobType = "summary_batch_compute"

// SummaryHandler exposes payroll summary computation and reads.
type SummaryHandler struct {
	summaries  *service.SummaryService
	batchQueue *jobs.Queue
}

// NewSummaryHandler constructs SummaryHandler.
func NewSummaryHandler(summaries *service.SummaryService, batchQueue *jobs.Queue) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, batchQueue: batchQueue}
}

// Compute godoc
// @Summary Compute one employee's monthly summary
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body service.ComputeRequest true "Compute payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payroll/summaries/compute [post]
func (h *SummaryHandler) Compute(c *gin.Context) {
	var req service.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.summaries.ComputeMonthly(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Batch godoc
// @Summary Compute monthly summaries for a population
// @Description With ?async=true the batch is queued and a job id returned;
// @Description otherwise the run executes inline and its tallies are returned.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param async query bool false "Queue the batch instead of running inline"
// @Param payload body service.BatchComputeRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /payroll/summaries/batch [post]
func (h *SummaryHandler) Batch(c *gin.Context) {
	var req service.BatchComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if c.Query("async") == "true" {
		if h.batchQueue == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch queue unavailable"))
			return
		}
		jobID := uuid.NewString()
		if err := h.batchQueue.Enqueue(jobs.Job{ID: jobID, Type: BatchJobType, Payload: req}); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue batch"))
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID}, nil)
		return
	}

	result, err := h.summaries.ComputeMonthlyForAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.NotSalaryMonth {
		response.JSON(c, appErrors.ErrNotSalaryMonth.Status, result, nil, map[string]interface{}{
			"code":    appErrors.ErrNotSalaryMonth.Code,
			"message": "requested month is not the salary month for this cycle",
		})
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List monthly summaries
// @Tags Payroll
// @Produce json
// @Param employeeId query string false "Filter by employee"
// @Param cycleTimingId query string false "Filter by cycle timing"
// @Param year query int false "Salary year"
// @Param month query int false "Salary month"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payroll/summaries [get]
func (h *SummaryHandler) List(c *gin.Context) {
	req := service.SummaryListRequest{
		EmployeeID:    c.Query("employeeId"),
		CycleTimingID: c.Query("cycleTimingId"),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		req.SalaryYear = year
	}
	if month, err := strconv.Atoi(c.Query("month")); err == nil {
		req.SalaryMonth = month
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = size
	}

	rows, pagination, err := h.summaries.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// UpdateManual godoc
// @Summary Update manual payroll fields on a summary
// @Description Only overtime, advance, deductions and net salary are
// @Description reachable here; computed fields never change through this path.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param id path string true "Summary ID"
// @Param payload body service.ManualUpdateRequest true "Manual fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payroll/summaries/{id}/manual [patch]
func (h *SummaryHandler) UpdateManual(c *gin.Context) {
	var req service.ManualUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.summaries.UpdateManualFields(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
