package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
)

const applicationTable = "applications"

var applicationColumns = []string{"id", "subsidy_id", "applicant_id", "form", "document_ids", "status", "created_at"}

// ApplicationPostgres stores submitted applications.
type ApplicationPostgres struct {
	db *sql.DB
}

func NewApplicationPostgres(db *sql.DB) *ApplicationPostgres {
	return &ApplicationPostgres{db: db}
}

var _ repository.ApplicationRepository = (*ApplicationPostgres)(nil)

func (r *ApplicationPostgres) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	query, args, err := psql().
		Insert(applicationTable).
		Columns(applicationColumns...).
		Values(app.ID, app.SubsidyID, app.ApplicantID, app.Form, app.DocumentIDs, app.Status, app.CreatedAt).
		Suffix(returning(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out model.Application
	if err := sqlscan.Get(ctx, r.db, &out, query, args...); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *ApplicationPostgres) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTable).
		Where(squirrel.Eq{"applicant_id": applicantID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	apps := make([]model.Application, 0)
	if err := sqlscan.Select(ctx, r.db, &apps, query, args...); err != nil {
		return nil, err
	}
	return apps, nil
}
