package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
)

const documentTable = "documents"

var documentColumns = []string{
	"id",
	"applicant_id",
	"type",
	"number",
	"filename",
	"storage_path",
	"size",
	"content_type",
	"uploaded_at",
}

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
// A second document of the same type for the applicant yields repository.ErrConflict.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	query, args, err := psql().
		Insert(documentTable).
		Columns(documentColumns...).
		Values(
			doc.ID,
			doc.ApplicantID,
			doc.Type,
			doc.Number,
			doc.Filename,
			doc.StoragePath,
			doc.Size,
			doc.ContentType,
			doc.UploadedAt,
		).
		Suffix(returning(documentColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out model.Document
	if err := sqlscan.Get(ctx, r.db, &out, query, args...); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Update rewrites the mutable fields of a document owned by doc.ApplicantID.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	query, args, err := psql().
		Update(documentTable).
		SetMap(map[string]any{
			"type":         doc.Type,
			"number":       doc.Number,
			"filename":     doc.Filename,
			"storage_path": doc.StoragePath,
			"size":         doc.Size,
			"content_type": doc.ContentType,
			"uploaded_at":  doc.UploadedAt,
		}).
		Where(squirrel.Eq{"id": doc.ID, "applicant_id": doc.ApplicantID}).
		Suffix(returning(documentColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out model.Document
	if err := sqlscan.Get(ctx, r.db, &out, query, args...); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var d model.Document
	if err := sqlscan.Get(ctx, r.db, &d, query, args...); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DocumentPostgres) FindByIDs(ctx context.Context, applicantID string, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return []model.Document{}, nil
	}
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTable).
		Where(squirrel.Eq{"applicant_id": applicantID, "id": ids}).
		OrderBy("uploaded_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(ids))
	if err := sqlscan.Select(ctx, r.db, &docs, query, args...); err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

// ListByApplicant returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByApplicant(ctx context.Context, applicantID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where := squirrel.Eq{"applicant_id": applicantID}

	countQuery, countArgs, err := psql().Select("COUNT(*)").From(documentTable).Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(documentColumns...).
		From(documentTable).
		Where(where).
		OrderBy("uploaded_at ASC", "id ASC").
		Limit(uint64(pq.Limit)).
		Offset(uint64(pq.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	items := make([]model.Document, 0)
	if err := sqlscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete(documentTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
