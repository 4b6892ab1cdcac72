// Package services contains the application's business logic layer. Services
// orchestrate repositories, the selection engine and the lifecycle machine;
// controllers stay thin and repositories stay dumb.
package services

import (
	"github.com/dmorales/becas-core/internal/app/models"
)

// Actor identifies who is performing an operation, as extracted from the
// authenticated request. StudentID is set only for applicant accounts and
// backs every ownership check.
type Actor struct {
	UserID    int64
	Role      models.RoleType
	StudentID *int64
}

// ownsRecord reports whether the actor may touch the given scholarship
// record. Reviewers see everything; applicants only their own records.
func (a Actor) ownsRecord(s *models.Scholarship) bool {
	if a.Role == models.RoleReviewer {
		return true
	}
	return a.StudentID != nil && *a.StudentID == s.StudentID
}
