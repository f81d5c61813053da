package model

import "time"

// ApplicationStatusSubmitted is the status of a freshly submitted application.
// Later statuses belong to the officer review workflow.
const ApplicationStatusSubmitted = "submitted"

// Application is a submitted subsidy application.
type Application struct {
	ID          string     `json:"id" db:"id"`
	SubsidyID   string     `json:"subsidy_id" db:"subsidy_id"`
	ApplicantID string     `json:"applicant_id" db:"applicant_id"`
	Form        JSON       `json:"form" db:"form"`
	DocumentIDs StringList `json:"document_ids" db:"document_ids"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
