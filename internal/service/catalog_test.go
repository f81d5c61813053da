package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
	repoMocks "krushisetu/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(m *repoMocks.MockSubsidyRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "pm-kisan",
			setupMocks: func(m *repoMocks.MockSubsidyRepository) {
				m.On("FindByID", ctx, "pm-kisan").Return(&model.Subsidy{ID: "pm-kisan"}, nil)
			},
		},
		{
			name:       "empty id",
			setupMocks: func(m *repoMocks.MockSubsidyRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "unknown subsidy",
			id:   "nope",
			setupMocks: func(m *repoMocks.MockSubsidyRepository) {
				m.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrSubsidyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(repoMocks.MockSubsidyRepository)
			tt.setupMocks(m)

			sub, err := NewCatalogService(m).Get(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sub)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, sub.ID)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestCatalogService_List(t *testing.T) {
	ctx := context.Background()
	m := new(repoMocks.MockSubsidyRepository)
	m.On("List", ctx, repository.PageQuery{Limit: MaxListLimit, Offset: 20}).
		Return(&repository.PageResult[model.Subsidy]{Items: []model.Subsidy{{ID: "a"}}, Total: 21}, nil)

	res, err := NewCatalogService(m).List(ctx, -1, 20)
	require.NoError(t, err)
	assert.Equal(t, 21, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestCatalogService_Requirements(t *testing.T) {
	ctx := context.Background()
	m := new(repoMocks.MockSubsidyRepository)
	m.On("FindByID", ctx, "drip").Return(&model.Subsidy{
		ID:                "drip",
		DocumentsRequired: model.JSON(`["aadhar_card", {"type": "land_records"}, "soil_health-card"]`),
	}, nil)
	m.On("FindByID", ctx, "broken").Return(&model.Subsidy{
		ID:                "broken",
		DocumentsRequired: model.JSON(`[42]`),
	}, nil)

	svc := NewCatalogService(m)

	set, err := svc.Requirements(ctx, "drip")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aadhaar card", "Land documents/tenancy proof", "Soil Health Card"}, set.Labels())

	_, err = svc.Requirements(ctx, "broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSubsidyNotFound))
}
