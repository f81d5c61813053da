package mocks

import (
	"context"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockSubsidyRepository struct {
	mock.Mock
}

func (m *MockSubsidyRepository) FindByID(ctx context.Context, id string) (*model.Subsidy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subsidy), args.Error(1)
}

func (m *MockSubsidyRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Subsidy], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Subsidy]), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByApplicant(ctx context.Context, applicantID string) (*model.Profile, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Application), args.Error(1)
}
