package service

import (
	"context"
	"database/sql"
	"errors"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
)

// ProfileService serves the prefill data of the application form.
type ProfileService interface {
	// Get returns the applicant's profile with their uploaded documents embedded.
	Get(ctx context.Context, applicantID string) (*model.Profile, error)
}

type profileService struct {
	profiles  repository.ProfileRepository
	documents repository.DocumentRepository
}

func NewProfileService(profiles repository.ProfileRepository, documents repository.DocumentRepository) ProfileService {
	return &profileService{profiles: profiles, documents: documents}
}

func (s *profileService) Get(ctx context.Context, applicantID string) (*model.Profile, error) {
	if applicantID == "" {
		return nil, ErrApplicantRequired
	}
	p, err := s.profiles.FindByApplicant(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	docs, err := s.documents.ListByApplicant(ctx, applicantID, repository.PageQuery{Limit: MaxListLimit})
	if err != nil {
		return nil, err
	}
	p.Documents = docs.Items
	if p.Documents == nil {
		p.Documents = []model.Document{}
	}
	return p, nil
}
