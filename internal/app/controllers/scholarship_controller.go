package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/repositories"
	"github.com/dmorales/becas-core/internal/app/services"
	"github.com/dmorales/becas-core/internal/middleware"
	"github.com/dmorales/becas-core/internal/pkg/helpers"
)

// ScholarshipController handles award record operations
type ScholarshipController struct {
	scholarshipService services.ScholarshipService
	lifecycleService   services.LifecycleService
	evidenceService    services.EvidenceService
}

// NewScholarshipController creates a new ScholarshipController
func NewScholarshipController(
	scholarshipService services.ScholarshipService,
	lifecycleService services.LifecycleService,
	evidenceService services.EvidenceService,
) *ScholarshipController {
	return &ScholarshipController{
		scholarshipService: scholarshipService,
		lifecycleService:   lifecycleService,
		evidenceService:    evidenceService,
	}
}

// ListScholarships retrieves award records
// @Summary List award records
// @Description Retrieves award records filtered by period, status or career. Applicants always see only their own records.
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param periodId query int false "Filter by period ID"
// @Param status query string false "Filter by lifecycle status"
// @Param career query string false "Filter by career"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ScholarshipListResponse} "Records retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /scholarships [get]
func (c *ScholarshipController) ListScholarships(ctx *gin.Context) {
	filter := repositories.ScholarshipFilter{}

	if v := ctx.Query("periodId"); v != "" {
		periodID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid periodId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.PeriodID = &periodID
	}
	if v := ctx.Query("status"); v != "" {
		status := models.Status(v)
		if !status.IsValid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status")
			errorDetail = errorDetail.WithDetails("Unknown status " + v)
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.Status = &status
	}
	if v := ctx.Query("career"); v != "" {
		filter.Career = &v
	}

	page, size := helpers.ParsePaginationParams(ctx)
	actor := middleware.ActorFromContext(ctx)

	resp, err := c.scholarshipService.List(ctx, filter, actor, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// GetScholarship retrieves one award record
// @Summary Get award record
// @Description Retrieves one award record by ID
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ScholarshipResponse} "Record retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /scholarships/{id} [get]
func (c *ScholarshipController) GetScholarship(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	rec, err := c.scholarshipService.GetByID(ctx, id, middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.NewScholarshipResponse(rec),
		Timestamp: time.Now(),
	})
}

// GetActions retrieves the actions the caller may attempt on a record
// @Summary Get legal actions
// @Description Returns the lifecycle events the caller's role may attempt on the record in its current status
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ActionsResponse} "Actions retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /scholarships/{id}/actions [get]
func (c *ScholarshipController) GetActions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.lifecycleService.Actions(ctx, id, middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// ApplyTransition applies one lifecycle event to a record
// @Summary Apply lifecycle transition
// @Description Applies one lifecycle event to the record. Rejection events require a reason; submission events require matching evidence to be attached first.
// @Tags scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Param request body dto.TransitionRequest true "Event to apply"
// @Success 200 {object} dto.APIResponse{data=dto.ScholarshipResponse} "Transition applied"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or missing reason"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal transition or concurrent modification"
// @Failure 422 {object} dto.ErrorResponse "Required evidence not attached"
// @Router /scholarships/{id}/transitions [post]
func (c *ScholarshipController) ApplyTransition(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transition data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	rec, err := c.lifecycleService.Transition(ctx, id, req.Event, middleware.ActorFromContext(ctx), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.NewScholarshipResponse(rec),
		Timestamp: time.Now(),
	})
}

// GetHistory retrieves a record's audit trail
// @Summary Get status history
// @Description Retrieves every applied transition of the record in chronological order
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.HistoryResponse} "History retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /scholarships/{id}/history [get]
func (c *ScholarshipController) GetHistory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	history, err := c.scholarshipService.GetHistory(ctx, id, middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      history,
		Timestamp: time.Now(),
	})
}

// UploadEvidence attaches a document to a record
// @Summary Upload evidence
// @Description Stores an uploaded document and attaches it to the record as a new evidence version. Uploading does not advance the lifecycle by itself.
// @Tags scholarships
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Param documentType formData string true "Document type" Enums(BANK_CERT, CONTRACT_SIGNED)
// @Param file formData file true "Document file"
// @Success 201 {object} dto.APIResponse{data=models.DocumentEvidence} "Evidence attached"
// @Failure 400 {object} dto.ErrorResponse "Invalid document type or file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /scholarships/{id}/evidence [post]
func (c *ScholarshipController) UploadEvidence(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docType := models.DocumentType(ctx.PostForm("documentType"))
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Document file is required")
		errorDetail = errorDetail.WithDetails("Send the document in the 'file' form field")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	ev, err := c.evidenceService.UploadEvidence(ctx, id, docType, fileHeader, middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      ev,
		Timestamp: time.Now(),
	})
}

// ListEvidence retrieves all evidence attached to a record
// @Summary List evidence
// @Description Retrieves every document attached to the record, newest first
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.DocumentEvidence} "Evidence retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /scholarships/{id}/evidence [get]
func (c *ScholarshipController) ListEvidence(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	evidence, err := c.evidenceService.ListEvidence(ctx, id, middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      evidence,
		Timestamp: time.Now(),
	})
}

// SetBankAccount stores the applicant's bank account number
// @Summary Set bank account
// @Description Stores the applicant's payment account on their own record
// @Tags scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID" Format(int64) minimum(1)
// @Param request body dto.BankAccountRequest true "Bank account number"
// @Success 200 {object} dto.APIResponse "Bank account recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid account number"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the record owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 409 {object} dto.ErrorResponse "Record is closed or was modified concurrently"
// @Router /scholarships/{id}/bank-account [put]
func (c *ScholarshipController) SetBankAccount(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.BankAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid bank account data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.scholarshipService.SetBankAccount(ctx, id, middleware.ActorFromContext(ctx), req.BankAccountNumber); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Bank account recorded"},
		Timestamp: time.Now(),
	})
}
