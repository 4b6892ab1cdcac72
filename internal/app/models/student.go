package models

import "time"

// StudentRecord is one validated roster row as handed to the selection engine.
// Records are immutable once imported; a re-import replaces them wholesale.
type StudentRecord struct {
	NationalID        string            `json:"nationalId" db:"national_id" example:"30123456"`
	FirstName         string            `json:"firstName" db:"first_name" example:"Lucía"`
	LastName          string            `json:"lastName" db:"last_name" example:"Fernández"`
	UniversityEmail   string            `json:"universityEmail" db:"university_email" example:"lfernandez@uni.edu"`
	Faculty           string            `json:"faculty" db:"faculty" example:"Engineering"`
	Career            string            `json:"career" db:"career" example:"Systems Engineering"`
	Semester          int               `json:"semester" db:"semester" example:"6"`
	AverageGrade      float64           `json:"averageGrade" db:"average_grade" example:"8.45"`
	AcademicCondition AcademicCondition `json:"academicCondition" db:"academic_condition" example:"REGULAR"`
}

// IsRegular reports whether the student may participate in ranking.
func (r StudentRecord) IsRegular() bool {
	return r.AcademicCondition == ConditionRegular
}

// Student is the persisted form of an imported student, keyed by national ID.
type Student struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	StudentRecord
}

// SelectionDecision is the engine's verdict for a single roster row. It is
// derived data, recomputed on every import run and never hand-edited.
type SelectionDecision struct {
	NationalID      string           `json:"nationalId"`
	Career          string           `json:"career"`
	AverageGrade    float64          `json:"averageGrade"`
	IsSelected      bool             `json:"isSelected"`
	CutoffGradeUsed float64          `json:"cutoffGradeUsed"`
	RejectionReason *RejectionReason `json:"rejectionReason,omitempty"`
}
