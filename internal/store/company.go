package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/curriculo/apiserver/types"
)

// CompanyRepository handles persistence for companies.
type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetByCoordinate returns the company coordinated by the given user.
func (r *CompanyRepository) GetByCoordinate(ctx context.Context, userID int) (types.Company, error) {
	const query = `
		SELECT id, name, description, email, logo_key, status, coordinate_id
		FROM companies
		WHERE coordinate_id = $1 AND NOT status_delete`
	var company types.Company
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&company.ID,
		&company.Name,
		&company.Description,
		&company.Email,
		&company.LogoKey,
		&company.Status,
		&company.CoordinateID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Company{}, ErrNotFound
		}
		return types.Company{}, err
	}
	return company, nil
}
