package mocks

import (
	"context"
	"io"
	"time"

	"krushisetu/internal/model"
	"krushisetu/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, applicantID string, in service.DocumentInput) (*model.Document, error) {
	args := m.Called(ctx, applicantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, applicantID, id string, in service.DocumentInput) (*model.Document, error) {
	args := m.Called(ctx, applicantID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, applicantID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, applicantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, applicantID, id string) (*model.Document, error) {
	args := m.Called(ctx, applicantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Open(ctx context.Context, applicantID, id string) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, applicantID, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.Document), args.Error(2)
}

func (m *MockDocumentService) Link(ctx context.Context, applicantID, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, applicantID, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, applicantID, id string) error {
	args := m.Called(ctx, applicantID, id)
	return args.Error(0)
}
