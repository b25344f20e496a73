package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// EmployeeHandler exposes employee master data and derived work logs.
type EmployeeHandler struct {
	employees *service.EmployeeService
	workLogs  *service.WorkLogService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees *service.EmployeeService, workLogs *service.WorkLogService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, workLogs: workLogs}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param search query string false "Search by name or code"
// @Param departmentId query string false "Filter by department"
// @Param cycleTimingId query string false "Filter by cycle timing"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter models.EmployeeFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.DepartmentID = c.Query("departmentId")
	filter.ShiftTypeID = c.Query("shiftTypeId")
	filter.CycleTimingID = c.Query("cycleTimingId")
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	employees, pagination, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get one employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// WorkLogs godoc
// @Summary List derived daily work logs for an employee
// @Description Work logs are recomputed from the raw scan entries on every
// @Description request; nothing is persisted.
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employees/{id}/work-logs [get]
func (h *EmployeeHandler) WorkLogs(c *gin.Context) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
		return
	}
	// The "to" date is inclusive; extend to the last instant of that day.
	to = to.Add(24*time.Hour - time.Millisecond)

	logs, err := h.workLogs.ListForEmployee(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
