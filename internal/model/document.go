// Package model holds the portal domain types shared by the API, its repositories and the
// applicant client.
package model

import "time"

// Document represents a supporting document an applicant has uploaded to the portal.
// The file itself lives in object storage under StoragePath; this is the metadata row.
type Document struct {
	ID          string    `json:"id" db:"id"`
	ApplicantID string    `json:"applicant_id" db:"applicant_id"`
	Type        string    `json:"type" db:"type"`
	Number      string    `json:"number" db:"number"`
	Filename    string    `json:"filename" db:"filename"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	Size        int64     `json:"size" db:"size"`
	ContentType string    `json:"content_type" db:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Known document types. Subsidies may also require free-text custom types.
const (
	DocTypeAadhaarCard   = "aadhar_card"
	DocTypeBankPassbook  = "bank_passbook"
	DocTypeLandRecords   = "land_records"
	DocTypePANCard       = "pan_card"
	DocTypePhoto         = "photo"
	DocTypeSHGMembership = "shg_membership"
)

// Limits applied to every document, on the applicant side and on the server.
const (
	MaxDocumentNumberLen       = 40
	MaxDocumentBytes     int64 = 5 << 20
)

// DocumentTypeLabels maps the known document types to their display labels.
var DocumentTypeLabels = map[string]string{
	DocTypeAadhaarCard:   "Aadhaar card",
	DocTypeBankPassbook:  "Bank passbook",
	DocTypeLandRecords:   "Land documents/tenancy proof",
	DocTypePANCard:       "PAN card",
	DocTypePhoto:         "Passport size photograph",
	DocTypeSHGMembership: "SHG membership certificate",
}
