package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
)

const subsidyTable = "subsidies"

var subsidyColumns = []string{"id", "title", "description", "provider", "documents_required", "created_at"}

// SubsidyPostgres reads the subsidy catalog.
type SubsidyPostgres struct {
	db *sql.DB
}

func NewSubsidyPostgres(db *sql.DB) *SubsidyPostgres {
	return &SubsidyPostgres{db: db}
}

var _ repository.SubsidyRepository = (*SubsidyPostgres)(nil)

func (r *SubsidyPostgres) FindByID(ctx context.Context, id string) (*model.Subsidy, error) {
	query, args, err := psql().
		Select(subsidyColumns...).
		From(subsidyTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s model.Subsidy
	if err := sqlscan.Get(ctx, r.db, &s, query, args...); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SubsidyPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Subsidy], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+subsidyTable).Scan(&total); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(subsidyColumns...).
		From(subsidyTable).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(pq.Limit)).
		Offset(uint64(pq.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	items := make([]model.Subsidy, 0)
	if err := sqlscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Subsidy]{Items: items, Total: total}, nil
}
