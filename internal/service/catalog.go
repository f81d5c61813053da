package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"krushisetu/internal/model"
	"krushisetu/internal/repository"
	"krushisetu/internal/requirement"
)

// SubsidyListResult is one page of the subsidy catalog.
type SubsidyListResult struct {
	Items []model.Subsidy `json:"data"`
	Total int             `json:"total"`
}

// CatalogService is the read-only view of the subsidy catalog.
type CatalogService interface {
	Get(ctx context.Context, id string) (*model.Subsidy, error)
	List(ctx context.Context, limit, offset int) (*SubsidyListResult, error)
	// Requirements resolves the subsidy's documents_required into typed, labelled entries.
	Requirements(ctx context.Context, id string) (requirement.Set, error)
}

type catalogService struct {
	repo repository.SubsidyRepository
}

func NewCatalogService(repo repository.SubsidyRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) Get(ctx context.Context, id string) (*model.Subsidy, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubsidyNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *catalogService) List(ctx context.Context, limit, offset int) (*SubsidyListResult, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SubsidyListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *catalogService) Requirements(ctx context.Context, id string) (requirement.Set, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	set, err := requirement.Resolve(sub.DocumentsRequired)
	if err != nil {
		return nil, fmt.Errorf("subsidy %s: %w", id, err)
	}
	return set, nil
}
