package services

import (
	"context"

	"github.com/curriculo/apiserver/types"
)

// CVLanguageRepository defines persistence operations for CV languages.
type CVLanguageRepository interface {
	List(ctx context.Context) ([]types.CVLanguage, error)
	GetByID(ctx context.Context, id int) (types.CVLanguage, error)
	Create(ctx context.Context, language string) (types.CVLanguage, error)
	Update(ctx context.Context, id int, language string) error
	SoftDelete(ctx context.Context, id int) error
}

// CVLanguageService encapsulates CV-language use-cases.
type CVLanguageService struct {
	repo CVLanguageRepository
}

func NewCVLanguageService(repo CVLanguageRepository) *CVLanguageService {
	return &CVLanguageService{repo: repo}
}

func (s *CVLanguageService) List(ctx context.Context) ([]types.CVLanguage, error) {
	return s.repo.List(ctx)
}

func (s *CVLanguageService) Get(ctx context.Context, id int) (types.CVLanguage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CVLanguageService) Create(ctx context.Context, language string) (types.CVLanguage, error) {
	return s.repo.Create(ctx, language)
}

func (s *CVLanguageService) Update(ctx context.Context, id int, language string) error {
	return s.repo.Update(ctx, id, language)
}

func (s *CVLanguageService) Delete(ctx context.Context, id int) error {
	return s.repo.SoftDelete(ctx, id)
}
