package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/curriculo/apiserver/types"
)

// AddressRepository handles persistence for addresses.
type AddressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) GetByID(ctx context.Context, id int) (types.Address, error) {
	const query = `
		SELECT id, street, num_int, num_ext, suburb, town, state, country, zip_code
		FROM addresses
		WHERE id = $1 AND NOT status_delete`
	var address types.Address
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&address.ID,
		&address.Street,
		&address.NumInt,
		&address.NumExt,
		&address.Suburb,
		&address.Town,
		&address.State,
		&address.Country,
		&address.ZipCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Address{}, ErrNotFound
		}
		return types.Address{}, err
	}
	return address, nil
}

func (r *AddressRepository) Create(ctx context.Context, address types.Address) (types.Address, error) {
	const query = `
		INSERT INTO addresses (street, num_int, num_ext, suburb, town, state, country, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		address.Street,
		address.NumInt,
		address.NumExt,
		address.Suburb,
		address.Town,
		address.State,
		address.Country,
		address.ZipCode,
	).Scan(&address.ID)
	if err != nil {
		return types.Address{}, err
	}
	return address, nil
}

func (r *AddressRepository) Update(ctx context.Context, address types.Address) error {
	const query = `
		UPDATE addresses
		SET street = $1,
			num_int = $2,
			num_ext = $3,
			suburb = $4,
			town = $5,
			state = $6,
			country = $7,
			zip_code = $8
		WHERE id = $9 AND NOT status_delete`
	result, err := r.db.ExecContext(
		ctx,
		query,
		address.Street,
		address.NumInt,
		address.NumExt,
		address.Suburb,
		address.Town,
		address.State,
		address.Country,
		address.ZipCode,
		address.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AddressRepository) SoftDelete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE addresses SET status_delete = TRUE WHERE id = $1`, id)
	return err
}
