package model

import "time"

// Profile holds the prefill data for an applicant's application form.
type Profile struct {
	ApplicantID string `json:"applicant_id" db:"applicant_id"`
	FullName    string `json:"full_name" db:"full_name"`
	FatherName  string `json:"father_name" db:"father_name"`
	Mobile      string `json:"mobile" db:"mobile"`
	Address     string `json:"address" db:"address"`

	State       string `json:"state" db:"state"`
	District    string `json:"district" db:"district"`
	SubDistrict string `json:"sub_district" db:"sub_district"`
	Village     string `json:"village" db:"village"`

	SurveyNumber string  `json:"survey_number" db:"survey_number"`
	LandAcres    float64 `json:"land_acres" db:"land_acres"`

	BankName      string `json:"bank_name" db:"bank_name"`
	AccountNumber string `json:"account_number" db:"account_number"`
	IFSC          string `json:"ifsc" db:"ifsc"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Documents []Document `json:"documents,omitempty" db:"-"`
}
