package models

import "time"

// Period defines an academic period against which rosters are imported and
// scholarships awarded, e.g. "2026-1".
type Period struct {
	ID        int64     `json:"id" db:"id" example:"3"`
	Name      string    `json:"name" db:"name" example:"2026-1"`
	Year      int       `json:"year" db:"year" example:"2026"`
	Term      int       `json:"term" db:"term" example:"1"`
	Active    bool      `json:"active" db:"active" example:"true"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
