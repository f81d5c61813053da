package service

import (
	"context"
	"database/sql"
	"testing"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
	repoMocks "krushisetu/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds the applicant's documents", func(t *testing.T) {
		profiles := new(repoMocks.MockProfileRepository)
		docs := new(repoMocks.MockDocumentRepository)
		profiles.On("FindByApplicant", ctx, applicant).Return(&model.Profile{ApplicantID: applicant, FullName: "Ramesh"}, nil)
		docs.On("ListByApplicant", ctx, applicant, repository.PageQuery{Limit: MaxListLimit}).
			Return(&repository.PageResult[model.Document]{Items: []model.Document{{ID: "d1", Type: "photo"}}, Total: 1}, nil)

		p, err := NewProfileService(profiles, docs).Get(ctx, applicant)
		require.NoError(t, err)
		assert.Equal(t, "Ramesh", p.FullName)
		require.Len(t, p.Documents, 1)
		assert.Equal(t, "photo", p.Documents[0].Type)
	})

	t.Run("no documents yields an empty list", func(t *testing.T) {
		profiles := new(repoMocks.MockProfileRepository)
		docs := new(repoMocks.MockDocumentRepository)
		profiles.On("FindByApplicant", ctx, applicant).Return(&model.Profile{ApplicantID: applicant}, nil)
		docs.On("ListByApplicant", ctx, applicant, mock.Anything).
			Return(&repository.PageResult[model.Document]{}, nil)

		p, err := NewProfileService(profiles, docs).Get(ctx, applicant)
		require.NoError(t, err)
		assert.NotNil(t, p.Documents)
		assert.Empty(t, p.Documents)
	})

	t.Run("missing profile", func(t *testing.T) {
		profiles := new(repoMocks.MockProfileRepository)
		docs := new(repoMocks.MockDocumentRepository)
		profiles.On("FindByApplicant", ctx, applicant).Return(nil, sql.ErrNoRows)

		_, err := NewProfileService(profiles, docs).Get(ctx, applicant)
		assert.ErrorIs(t, err, ErrProfileNotFound)
		docs.AssertNotCalled(t, "ListByApplicant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("applicant required", func(t *testing.T) {
		_, err := NewProfileService(nil, nil).Get(ctx, "")
		assert.ErrorIs(t, err, ErrApplicantRequired)
	})
}
