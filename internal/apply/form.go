package apply

import "krushisetu/internal/model"

// Form is the non-document part of an application draft.
type Form struct {
	Personal PersonalDetails `json:"personal"`
	Location Location        `json:"location"`
	Land     LandDetails     `json:"land"`
	Bank     BankDetails     `json:"bank"`
}

type PersonalDetails struct {
	FullName   string `json:"full_name" validate:"required"`
	FatherName string `json:"father_name"`
	Mobile     string `json:"mobile" validate:"required,len=10,numeric"`
	Address    string `json:"address"`
}

type Location struct {
	State       string `json:"state" validate:"required"`
	District    string `json:"district" validate:"required"`
	SubDistrict string `json:"sub_district"`
	Village     string `json:"village" validate:"required"`
}

type LandDetails struct {
	SurveyNumber string  `json:"survey_number"`
	Acres        float64 `json:"acres" validate:"gte=0"`
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number" validate:"omitempty,numeric,min=9,max=18"`
	IFSC          string `json:"ifsc" validate:"omitempty,ifsc"`
}

// FormFromProfile prefills a form from the applicant's profile. A nil profile gives an empty form.
func FormFromProfile(p *model.Profile) Form {
	if p == nil {
		return Form{}
	}
	return Form{
		Personal: PersonalDetails{
			FullName:   p.FullName,
			FatherName: p.FatherName,
			Mobile:     p.Mobile,
			Address:    p.Address,
		},
		Location: Location{
			State:       p.State,
			District:    p.District,
			SubDistrict: p.SubDistrict,
			Village:     p.Village,
		},
		Land: LandDetails{
			SurveyNumber: p.SurveyNumber,
			Acres:        p.LandAcres,
		},
		Bank: BankDetails{
			BankName:      p.BankName,
			AccountNumber: p.AccountNumber,
			IFSC:          p.IFSC,
		},
	}
}
