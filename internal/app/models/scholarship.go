package models

import "time"

// Scholarship is the long-lived award record created from a selection
// decision. At most one row exists per (student, period) pair; re-imports
// upsert into it. Status is mutated exclusively through the lifecycle machine,
// and Version backs the optimistic-concurrency check on every update.
type Scholarship struct {
	ID                int64      `json:"id" db:"id"`
	StudentID         int64      `json:"studentId" db:"student_id"`
	PeriodID          int64      `json:"periodId" db:"period_id"`
	Career            string     `json:"career" db:"career"`
	AverageGrade      float64    `json:"averageGrade" db:"average_grade"`
	Status            Status     `json:"status" db:"status"`
	RejectionReason   *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	BankAccountNumber *string    `json:"bankAccountNumber,omitempty" db:"bank_account_number"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty" db:"payment_date"`
	Version           int64      `json:"version" db:"version"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
	Period  *Period  `json:"period,omitempty"`
}

// DocumentEvidence is an uploaded document attached to a scholarship record.
// The lifecycle machine consults it only as a guard predicate ("has evidence
// of type X been attached?"); it never owns or mutates evidence rows.
type DocumentEvidence struct {
	ID            int64        `json:"id" db:"id"`
	ScholarshipID int64        `json:"scholarshipId" db:"scholarship_id"`
	DocumentType  DocumentType `json:"documentType" db:"document_type"`
	Version       int          `json:"version" db:"version"`
	FileID        *int64       `json:"fileId,omitempty" db:"file_id"`
	UploadedBy    *int64       `json:"uploadedBy,omitempty" db:"uploaded_by"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}

// StatusHistory is one audit row per applied lifecycle transition.
type StatusHistory struct {
	ID            int64     `json:"id" db:"id"`
	ScholarshipID int64     `json:"scholarshipId" db:"scholarship_id"`
	FromStatus    Status    `json:"fromStatus" db:"from_status"`
	ToStatus      Status    `json:"toStatus" db:"to_status"`
	ActorRole     RoleType  `json:"actorRole" db:"actor_role"`
	ActorID       *int64    `json:"actorId,omitempty" db:"actor_id"`
	Reason        *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
