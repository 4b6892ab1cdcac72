package dto

import (
	"math"
	"time"

	"github.com/dmorales/becas-core/internal/app/importer"
	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
)

// TransitionRequest asks to apply one lifecycle event to a record.
type TransitionRequest struct {
	Event  lifecycle.Event `json:"event" binding:"required"`
	Reason string          `json:"reason,omitempty"`
}

// ActionsResponse lists the events the caller may attempt on a record.
type ActionsResponse struct {
	Status  models.Status     `json:"status"`
	Actions []lifecycle.Event `json:"actions"`
}

// ImportSummary reports the outcome of one roster import run.
type ImportSummary struct {
	PeriodID      int64                   `json:"periodId"`
	TotalRows     int                     `json:"totalRows"`
	ImportedRows  int                     `json:"importedRows"`
	DiscardedRows int                     `json:"discardedRows"`
	Selected      int                     `json:"selected"`
	Excluded      int                     `json:"excluded"`
	Cohorts       []CohortSummary         `json:"cohorts"`
	Discarded     []importer.DiscardedRow `json:"discarded,omitempty"`
}

// CohortSummary reports per-career selection results.
type CohortSummary struct {
	Career      string   `json:"career"`
	Regular     int      `json:"regular"`
	Selected    int      `json:"selected"`
	CutoffGrade *float64 `json:"cutoffGrade,omitempty"`
}

// DecisionResponse is the wire form of one selection decision. The sentinel
// cutoff of an empty cohort is rendered as null.
type DecisionResponse struct {
	NationalID      string   `json:"nationalId"`
	Career          string   `json:"career"`
	AverageGrade    float64  `json:"averageGrade"`
	IsSelected      bool     `json:"isSelected"`
	CutoffGradeUsed *float64 `json:"cutoffGradeUsed"`
	RejectionReason *string  `json:"rejectionReason,omitempty"`
}

// NewDecisionResponse converts an engine decision to its wire form.
func NewDecisionResponse(d models.SelectionDecision) DecisionResponse {
	resp := DecisionResponse{
		NationalID:   d.NationalID,
		Career:       d.Career,
		AverageGrade: d.AverageGrade,
		IsSelected:   d.IsSelected,
	}
	if !math.IsInf(d.CutoffGradeUsed, 1) {
		cutoff := d.CutoffGradeUsed
		resp.CutoffGradeUsed = &cutoff
	}
	if d.RejectionReason != nil {
		reason := string(*d.RejectionReason)
		resp.RejectionReason = &reason
	}
	return resp
}

// ScholarshipResponse is the wire form of one award record.
type ScholarshipResponse struct {
	ID                int64            `json:"id"`
	PeriodID          int64            `json:"periodId"`
	Career            string           `json:"career"`
	AverageGrade      float64          `json:"averageGrade"`
	Status            models.Status    `json:"status"`
	RejectionReason   *string          `json:"rejectionReason,omitempty"`
	BankAccountNumber *string          `json:"bankAccountNumber,omitempty"`
	PaymentDate       *time.Time       `json:"paymentDate,omitempty"`
	Student           *StudentResponse `json:"student,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// StudentResponse is the student summary embedded in award responses.
type StudentResponse struct {
	NationalID      string `json:"nationalId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	UniversityEmail string `json:"universityEmail"`
	Faculty         string `json:"faculty"`
	Semester        int    `json:"semester"`
}

// NewScholarshipResponse converts an award record to its wire form.
func NewScholarshipResponse(s *models.Scholarship) ScholarshipResponse {
	resp := ScholarshipResponse{
		ID:                s.ID,
		PeriodID:          s.PeriodID,
		Career:            s.Career,
		AverageGrade:      s.AverageGrade,
		Status:            s.Status,
		RejectionReason:   s.RejectionReason,
		BankAccountNumber: s.BankAccountNumber,
		PaymentDate:       s.PaymentDate,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Student != nil {
		resp.Student = &StudentResponse{
			NationalID:      s.Student.NationalID,
			FirstName:       s.Student.FirstName,
			LastName:        s.Student.LastName,
			UniversityEmail: s.Student.UniversityEmail,
			Faculty:         s.Student.Faculty,
			Semester:        s.Student.Semester,
		}
	}
	return resp
}

// ScholarshipListResponse is a paginated page of award records.
type ScholarshipListResponse struct {
	Items      []ScholarshipResponse `json:"items"`
	Pagination PaginationInfo        `json:"pagination"`
}

// HistoryResponse is one audit entry of a record's lifecycle.
type HistoryResponse struct {
	FromStatus models.Status   `json:"fromStatus"`
	ToStatus   models.Status   `json:"toStatus"`
	ActorRole  models.RoleType `json:"actorRole"`
	Reason     *string         `json:"reason,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// BankAccountRequest supplies the applicant's bank account number.
type BankAccountRequest struct {
	BankAccountNumber string `json:"bankAccountNumber" binding:"required"`
}
