package repository

import (
	"context"
	"errors"

	"krushisetu/internal/model"
)

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. a second document of the same type for one applicant.
var ErrConflict = errors.New("conflicting record")

// DocumentRepository defines data access for applicant documents. Persistence only.
// Lookups of a missing row return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Update rewrites type, number, file fields and uploaded_at of the applicant's document.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByIDs returns the applicant's documents among ids, in upload order.
	FindByIDs(ctx context.Context, applicantID string, ids []string) ([]model.Document, error)

	// ListByApplicant returns one page of the applicant's documents in upload order.
	ListByApplicant(ctx context.Context, applicantID string, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
