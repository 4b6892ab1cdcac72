package models

import "time"

// User defines the user model based on the 'users' table. Reviewers are
// created by seed/administration; applicant accounts are linked to an
// imported student row via StudentID.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"staff@uni.edu"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name" example:"Ana"`
	LastName    string     `json:"lastName" db:"last_name" example:"García"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"REVIEWER"`
	StudentID   *int64     `json:"studentId,omitempty" db:"student_id"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
