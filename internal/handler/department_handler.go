package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/manpower-adp-api/internal/service"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
	"github.com/noah-isme/manpower-adp-api/pkg/response"
)

// DepartmentHandler exposes department and shift-type master data.
type DepartmentHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentHandler constructs DepartmentHandler.
func NewDepartmentHandler(departments *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// ListDepartments godoc
// @Summary List departments
// @Tags MasterData
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departments.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags MasterData
// @Accept json
// @Produce json
// @Param payload body service.CreateNamedRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.departments.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// ListShiftTypes godoc
// @Summary List shift types
// @Tags MasterData
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /shift-types [get]
func (h *DepartmentHandler) ListShiftTypes(c *gin.Context) {
	shiftTypes, err := h.departments.ListShiftTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shiftTypes, nil)
}

// CreateShiftType godoc
// @Summary Create a shift type
// @Tags MasterData
// @Accept json
// @Produce json
// @Param payload body service.CreateNamedRequest true "Shift type payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /shift-types [post]
func (h *DepartmentHandler) CreateShiftType(c *gin.Context) {
	var req service.CreateNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shiftType, err := h.departments.CreateShiftType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shiftType)
}
