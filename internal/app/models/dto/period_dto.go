package dto

// CreatePeriodRequest represents period creation data
type CreatePeriodRequest struct {
	Name   string `json:"name" binding:"required" example:"2026-1"`
	Year   int    `json:"year" binding:"required,min=2000" example:"2026"`
	Term   int    `json:"term" binding:"required,min=1,max=2" example:"1"`
	Active bool   `json:"active"`
}

// UpdatePeriodRequest represents period update data
type UpdatePeriodRequest struct {
	Name   string `json:"name" binding:"required"`
	Year   int    `json:"year" binding:"required,min=2000"`
	Term   int    `json:"term" binding:"required,min=1,max=2"`
	Active bool   `json:"active"`
}
