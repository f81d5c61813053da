package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
	"krushisetu/internal/requirement"
)

// SubmitInput is the body of POST /apply/.
type SubmitInput struct {
	SubsidyID   string          `json:"subsidy_id"`
	Form        json.RawMessage `json:"form"`
	DocumentIDs []string        `json:"document_ids"`
}

// ApplicationService accepts subsidy applications.
type ApplicationService interface {
	// Submit checks that the subsidy exists, that every document belongs to the applicant and
	// that the documents cover the subsidy's required types, then stores the application.
	Submit(ctx context.Context, applicantID string, in SubmitInput) (*model.Application, error)
	List(ctx context.Context, applicantID string) ([]model.Application, error)
}

type applicationService struct {
	catalog   CatalogService
	documents repository.DocumentRepository
	repo      repository.ApplicationRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewApplicationService(catalog CatalogService, documents repository.DocumentRepository, repo repository.ApplicationRepository, log logrus.FieldLogger) ApplicationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &applicationService{
		catalog:   catalog,
		documents: documents,
		repo:      repo,
		log:       log.WithField("component", "application_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *applicationService) Submit(ctx context.Context, applicantID string, in SubmitInput) (*model.Application, error) {
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	if in.SubsidyID == "" {
		return nil, &ValidationError{Fields: map[string]string{"subsidy_id": "subsidy_id is required"}}
	}
	form := bytes.TrimSpace(in.Form)
	if len(form) == 0 || bytes.Equal(form, []byte("null")) {
		form = []byte("{}")
	}
	if form[0] != '{' {
		return nil, &ValidationError{Fields: map[string]string{"form": "form must be an object"}}
	}

	required, err := s.catalog.Requirements(ctx, in.SubsidyID)
	if err != nil {
		return nil, err
	}

	ids := dedupe(in.DocumentIDs)
	var docs []model.Document
	if len(ids) > 0 {
		docs, err = s.documents.FindByIDs(ctx, applicantID, ids)
		if err != nil {
			return nil, err
		}
		if len(docs) != len(ids) {
			return nil, ErrUnknownDocuments
		}
	}

	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.Type] = true
	}
	if missing := required.Missing(present); len(missing) > 0 {
		return nil, &MissingDocumentsError{Types: types(missing), Labels: missing.Labels()}
	}

	app := &model.Application{
		ID:          uuid.New().String(),
		SubsidyID:   in.SubsidyID,
		ApplicantID: applicantID,
		Form:        model.JSON(form),
		DocumentIDs: model.StringList(ids),
		Status:      model.ApplicationStatusSubmitted,
		CreatedAt:   s.now(),
	}
	stored, err := s.repo.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"applicant_id":   applicantID,
		"application_id": stored.ID,
		"subsidy_id":     stored.SubsidyID,
		"documents":      len(ids),
	}).Info("application submitted")
	return stored, nil
}

func (s *applicationService) List(ctx context.Context, applicantID string) ([]model.Application, error) {
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	apps, err := s.repo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []model.Application{}
	}
	return apps, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func types(set requirement.Set) []string {
	out := make([]string, len(set))
	for i, d := range set {
		out[i] = d.Type
	}
	return out
}
