package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"krushisetu/internal/model"
	"krushisetu/internal/portal"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetSubsidy(ctx context.Context, id string) (*model.Subsidy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subsidy), args.Error(1)
}

func (m *MockBackend) GetProfile(ctx context.Context) (*model.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockBackend) ListDocuments(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockBackend) CreateDocument(ctx context.Context, up portal.DocumentUpload) (*model.Document, error) {
	args := m.Called(ctx, up)
	if f, ok := args.Get(0).(func(context.Context, portal.DocumentUpload) *model.Document); ok {
		return f(ctx, up), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockBackend) UpdateDocument(ctx context.Context, id string, up portal.DocumentUpload) (*model.Document, error) {
	args := m.Called(ctx, id, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockBackend) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) SubmitApplication(ctx context.Context, in portal.ApplicationRequest) (*model.Application, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}
