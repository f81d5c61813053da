package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
)

var profileColumns = []string{
	"applicant_id",
	"full_name",
	"father_name",
	"mobile",
	"address",
	"state",
	"district",
	"sub_district",
	"village",
	"survey_number",
	"land_acres",
	"bank_name",
	"account_number",
	"ifsc",
	"updated_at",
}

// ProfilePostgres reads applicant profiles.
type ProfilePostgres struct {
	db *sql.DB
}

func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

func (r *ProfilePostgres) FindByApplicant(ctx context.Context, applicantID string) (*model.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"applicant_id": applicantID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p model.Profile
	if err := sqlscan.Get(ctx, r.db, &p, query, args...); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
