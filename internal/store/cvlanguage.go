package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/curriculo/apiserver/types"
	"github.com/lib/pq"
)

// CVLanguageRepository handles persistence for CV languages.
type CVLanguageRepository struct {
	db *sql.DB
}

func NewCVLanguageRepository(db *sql.DB) *CVLanguageRepository {
	return &CVLanguageRepository{db: db}
}

func (r *CVLanguageRepository) List(ctx context.Context) ([]types.CVLanguage, error) {
	const query = `
		SELECT id, language, created_date, modified_date
		FROM cv_languages
		WHERE NOT status_delete
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var languages []types.CVLanguage
	for rows.Next() {
		var lang types.CVLanguage
		if err := rows.Scan(&lang.ID, &lang.Language, &lang.CreatedDate, &lang.ModifiedDate); err != nil {
			return nil, err
		}
		languages = append(languages, lang)
	}
	return languages, rows.Err()
}

func (r *CVLanguageRepository) GetByID(ctx context.Context, id int) (types.CVLanguage, error) {
	const query = `
		SELECT id, language, created_date, modified_date
		FROM cv_languages
		WHERE id = $1 AND NOT status_delete`
	var lang types.CVLanguage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lang.ID,
		&lang.Language,
		&lang.CreatedDate,
		&lang.ModifiedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.CVLanguage{}, ErrNotFound
		}
		return types.CVLanguage{}, err
	}
	return lang, nil
}

func (r *CVLanguageRepository) Create(ctx context.Context, language string) (types.CVLanguage, error) {
	lang := types.CVLanguage{
		Language:     strings.ToLower(language),
		CreatedDate:  time.Now(),
		ModifiedDate: time.Now(),
	}

	const query = `
		INSERT INTO cv_languages (language, created_date, modified_date)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, lang.Language, lang.CreatedDate, lang.ModifiedDate).Scan(&lang.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.CVLanguage{}, ErrConflict
		}
		return types.CVLanguage{}, err
	}
	return lang, nil
}

func (r *CVLanguageRepository) Update(ctx context.Context, id int, language string) error {
	const query = `
		UPDATE cv_languages
		SET language = $1, modified_date = $2
		WHERE id = $3 AND NOT status_delete`
	result, err := r.db.ExecContext(ctx, query, strings.ToLower(language), time.Now(), id)
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

func (r *CVLanguageRepository) SoftDelete(ctx context.Context, id int) error {
	const query = `
		UPDATE cv_languages
		SET status_delete = TRUE, modified_date = $1
		WHERE id = $2 AND NOT status_delete`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
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
