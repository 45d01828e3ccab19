package services

import (
	"context"

	"github.com/curriculo/apiserver/types"
)

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	GetByCoordinate(ctx context.Context, userID int) (types.Company, error)
}

// CompanyService encapsulates company use-cases.
type CompanyService struct {
	repo CompanyRepository
}

func NewCompanyService(repo CompanyRepository) *CompanyService {
	return &CompanyService{repo: repo}
}

func (s *CompanyService) GetByCoordinate(ctx context.Context, userID int) (types.Company, error) {
	return s.repo.GetByCoordinate(ctx, userID)
}
