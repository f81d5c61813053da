package mocks

import (
	"context"

	"krushisetu/internal/model"
	"krushisetu/internal/requirement"
	"krushisetu/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (*model.Subsidy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subsidy), args.Error(1)
}

func (m *MockCatalogService) List(ctx context.Context, limit, offset int) (*service.SubsidyListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubsidyListResult), args.Error(1)
}

func (m *MockCatalogService) Requirements(ctx context.Context, id string) (requirement.Set, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(requirement.Set), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, applicantID string) (*model.Profile, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Submit(ctx context.Context, applicantID string, in service.SubmitInput) (*model.Application, error) {
	args := m.Called(ctx, applicantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockApplicationService) List(ctx context.Context, applicantID string) ([]model.Application, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Application), args.Error(1)
}
