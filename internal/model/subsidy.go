package model

import "time"

// Subsidy is a government scheme an applicant can apply for.
// DocumentsRequired is kept as the raw catalog value: a JSON array whose items are either
// plain type strings or descriptor objects.
type Subsidy struct {
	ID                string    `json:"id" db:"id"`
	Title             string    `json:"title" db:"title"`
	Description       string    `json:"description" db:"description"`
	Provider          string    `json:"provider" db:"provider"`
	DocumentsRequired JSON      `json:"documents_required" db:"documents_required"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
