package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/services"
	"github.com/dmorales/becas-core/internal/middleware"
)

// PeriodController handles academic period operations
type PeriodController struct {
	periodService services.PeriodService
}

// NewPeriodController creates a new PeriodController
func NewPeriodController(periodService services.PeriodService) *PeriodController {
	return &PeriodController{periodService: periodService}
}

// parseIDParam extracts an int64 path parameter or writes a 400 response.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreatePeriod handles period creation
// @Summary Create a new period
// @Description Creates a new academic period
// @Tags periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePeriodRequest true "Period information"
// @Success 201 {object} dto.APIResponse{data=models.Period} "Period created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Period already exists"
// @Router /periods [post]
func (c *PeriodController) CreatePeriod(ctx *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid period data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	period, err := c.periodService.CreatePeriod(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      period,
		Timestamp: time.Now(),
	})
}

// GetAllPeriods retrieves all periods
// @Summary Get all periods
// @Description Retrieves a list of all academic periods, newest first
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Period} "Periods retrieved successfully"
// @Router /periods [get]
func (c *PeriodController) GetAllPeriods(ctx *gin.Context) {
	periods, err := c.periodService.GetAllPeriods(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      periods,
		Timestamp: time.Now(),
	})
}

// GetPeriodByID retrieves a period by ID
// @Summary Get period details
// @Description Retrieves a specific academic period by its ID
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param id path int true "Period ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Period} "Period retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Period not found"
// @Router /periods/{id} [get]
func (c *PeriodController) GetPeriodByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	period, err := c.periodService.GetPeriodByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      period,
		Timestamp: time.Now(),
	})
}

// UpdatePeriod updates an existing period
// @Summary Update a period
// @Description Updates an existing academic period
// @Tags periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Period ID" Format(int64) minimum(1)
// @Param request body dto.UpdatePeriodRequest true "Updated period information"
// @Success 200 {object} dto.APIResponse{data=models.Period} "Period updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Period not found"
// @Failure 409 {object} dto.ErrorResponse "Period already exists"
// @Router /periods/{id} [put]
func (c *PeriodController) UpdatePeriod(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdatePeriodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid period data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	period, err := c.periodService.UpdatePeriod(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      period,
		Timestamp: time.Now(),
	})
}

// DeletePeriod deletes a period
// @Summary Delete a period
// @Description Deletes an academic period without awarded records
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param id path int true "Period ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Period deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Period not found"
// @Failure 409 {object} dto.ErrorResponse "Period has scholarship records"
// @Router /periods/{id} [delete]
func (c *PeriodController) DeletePeriod(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.periodService.DeletePeriod(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      nil,
		Timestamp: time.Now(),
	})
}
