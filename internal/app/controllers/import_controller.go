package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/services"
	"github.com/dmorales/becas-core/internal/middleware"
)

// ImportController handles roster import operations
type ImportController struct {
	importService services.ImportService
}

// NewImportController creates a new ImportController
func NewImportController(importService services.ImportService) *ImportController {
	return &ImportController{importService: importService}
}

// ImportRoster imports a roster file for a period
// @Summary Import a roster
// @Description Parses a CSV roster, runs the per-career selection and upserts one award record per valid row. Re-importing the same period converges on the existing records.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Period ID" Format(int64) minimum(1)
// @Param roster formData file true "CSV roster file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportSummary} "Import completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid roster file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Reviewer role required"
// @Failure 404 {object} dto.ErrorResponse "Period not found"
// @Router /periods/{id}/import [post]
func (c *ImportController) ImportRoster(ctx *gin.Context) {
	periodID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("roster")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Roster file is required")
		errorDetail = errorDetail.WithDetails("Send the CSV file in the 'roster' form field")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Could not read roster file")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	defer file.Close()

	summary, err := c.importService.ImportRoster(ctx, periodID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      summary,
		Timestamp: time.Now(),
	})
}
