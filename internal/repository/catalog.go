package repository

import (
	"context"

	"krushisetu/internal/model"
)

// SubsidyRepository reads the subsidy catalog.
type SubsidyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Subsidy, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Subsidy], error)
}

// ProfileRepository reads applicant profiles.
type ProfileRepository interface {
	FindByApplicant(ctx context.Context, applicantID string) (*model.Profile, error)
}

// ApplicationRepository stores submitted applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) (*model.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error)
}
