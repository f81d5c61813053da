package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
	"krushisetu/internal/storage"
	"krushisetu/internal/validation"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentInput is an upload or update request. On update Reader may be nil to keep the
// stored file.
type DocumentInput struct {
	Type        string    `json:"type" validate:"required,max=64"`
	Number      string    `json:"number" validate:"required,max=40"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Reader      io.Reader `json:"-"`
}

// MaxListLimit caps page sizes for document listings.
const MaxListLimit = 100

// DocumentService defines the use cases for an applicant's documents.
// Every method is scoped to applicantID; documents of other applicants look not found.
type DocumentService interface {
	// Upload stores the file in object storage, then saves the metadata row, removing the
	// object again if the row cannot be saved.
	Upload(ctx context.Context, applicantID string, in DocumentInput) (*model.Document, error)

	// Update changes type and number and, when in.Reader is set, replaces the file.
	Update(ctx context.Context, applicantID, id string, in DocumentInput) (*model.Document, error)

	// List returns the applicant's documents using limit/offset and a total count.
	List(ctx context.Context, applicantID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, applicantID, id string) (*model.Document, error)

	// Open streams the stored file. The caller closes the reader.
	Open(ctx context.Context, applicantID, id string) (io.ReadCloser, *model.Document, error)

	// Link returns a time-limited download URL for the stored file.
	Link(ctx context.Context, applicantID, id string, expiry time.Duration) (string, error)

	// Delete removes a document from both storage and repository.
	Delete(ctx context.Context, applicantID, id string) error
}

type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	maxBytes int64
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewDocumentService constructs a new DocumentService. maxBytes <= 0 uses model.MaxDocumentBytes.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, maxBytes int64, log logrus.FieldLogger) DocumentService {
	if maxBytes <= 0 {
		maxBytes = model.MaxDocumentBytes
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &documentService{
		store:    store,
		repo:     repo,
		maxBytes: maxBytes,
		validate: validation.New(),
		log:      log.WithField("component", "document_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) check(in *DocumentInput, requireFile bool) error {
	in.Type = strings.TrimSpace(in.Type)
	in.Number = strings.TrimSpace(in.Number)

	fields := validation.Fields(s.validate.Struct(in))
	if fields == nil {
		fields = map[string]string{}
	}
	switch {
	case in.Reader == nil && requireFile:
		fields["file"] = "file is required"
	case in.Reader != nil && in.Size > s.maxBytes:
		fields["file"] = fmt.Sprintf("file must be %d MB or smaller", s.maxBytes>>20)
	case in.Reader != nil && in.Size == 0:
		fields["file"] = "file is empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *documentService) put(ctx context.Context, applicantID string, in DocumentInput) (storage.ObjectInfo, string, error) {
	key, name := storage.DocumentKey(applicantID, in.Filename)
	opts := storage.DocumentOptions(applicantID, in.Type, in.Filename, in.ContentType, in.Size)
	info, err := s.store.Put(ctx, key, in.Reader, opts)
	if err != nil {
		return storage.ObjectInfo{}, "", fmt.Errorf("upload to storage: %w", err)
	}
	return info, name, nil
}

// rollback removes an object written for a row that could not be saved.
func (s *documentService) rollback(ctx context.Context, key string, cause error) error {
	if errors.Is(cause, repository.ErrConflict) {
		cause = ErrDuplicateType
	}
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		return fmt.Errorf("db save failed: %w; rollback delete failed: %v", cause, delErr)
	}
	return fmt.Errorf("db save failed: %w", cause)
}

func (s *documentService) Upload(ctx context.Context, applicantID string, in DocumentInput) (*model.Document, error) {
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	if err := s.check(&in, true); err != nil {
		return nil, err
	}

	info, name, err := s.put(ctx, applicantID, in)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		ApplicantID: applicantID,
		Type:        in.Type,
		Number:      in.Number,
		Filename:    name,
		StoragePath: info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		UploadedAt:  s.now(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, s.rollback(ctx, info.Key, err)
	}
	s.log.WithFields(logrus.Fields{
		"applicant_id": applicantID,
		"document_id":  stored.ID,
		"type":         stored.Type,
		"size":         stored.Size,
	}).Info("document uploaded")
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, applicantID, id string, in DocumentInput) (*model.Document, error) {
	current, err := s.Get(ctx, applicantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(&in, false); err != nil {
		return nil, err
	}

	next := *current
	next.Type = in.Type
	next.Number = in.Number
	next.UploadedAt = s.now()

	var newKey string
	if in.Reader != nil {
		info, name, err := s.put(ctx, applicantID, in)
		if err != nil {
			return nil, err
		}
		newKey = info.Key
		next.Filename = name
		next.StoragePath = info.Key
		next.Size = info.Size
		next.ContentType = info.ContentType
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		if newKey != "" {
			return nil, s.rollback(ctx, newKey, err)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateType
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if newKey != "" {
		// the row already points at the new object
		if err := s.store.Delete(ctx, current.StoragePath); err != nil {
			s.log.WithError(err).WithField("storage_path", current.StoragePath).Warn("failed to delete replaced object")
		}
	}
	return updated, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, applicantID string, limit, offset int) (*DocumentListResult, error) {
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	if limit <= 0 {
		limit = MaxListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByApplicant(ctx, applicantID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, applicantID, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.ApplicantID != applicantID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Open(ctx context.Context, applicantID, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, applicantID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return rc, doc, nil
}

func (s *documentService) Link(ctx context.Context, applicantID, id string, expiry time.Duration) (string, error) {
	doc, err := s.Get(ctx, applicantID, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, applicantID, id string) error {
	doc, err := s.Get(ctx, applicantID, id)
	if err != nil {
		return err
	}
	// storage first; a failure keeps the row so the object stays reachable
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
