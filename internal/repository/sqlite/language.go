package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
)

// LanguageRepo implements repository.LanguageRepository on the shared pool.
type LanguageRepo struct {
	conn *sql.DB
}

// compile-time interface check
var _ repository.LanguageRepository = (*LanguageRepo)(nil)

// Create inserts a new language. The UNIQUE index on name is the authority
// for duplicates: a name collision comes back as apperror.ErrConflict and no
// second row is ever written. The match is case-sensitive ("go" and "Go"
// are distinct entries).
func (r *LanguageRepo) Create(ctx context.Context, lang *model.Language) error {
	lang.ID = xid.New().String()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO languages (id, name, color_code) VALUES (?, ?, ?)`,
		lang.ID, lang.Name, lang.ColorCode,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", lang.Name))
		}
		return fmt.Errorf("sqlite: inserting language %s: %w", lang.Name, err)
	}

	return nil
}

func (r *LanguageRepo) GetByID(ctx context.Context, id string) (*model.Language, error) {
	var lang model.Language
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, color_code FROM languages WHERE id = ?`, id,
	).Scan(&lang.ID, &lang.Name, &lang.ColorCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("language", id)
		}
		return nil, fmt.Errorf("sqlite: getting language %s: %w", id, err)
	}
	return &lang, nil
}

func (r *LanguageRepo) List(ctx context.Context) ([]model.Language, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, name, color_code FROM languages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing languages: %w", err)
	}
	defer rows.Close()

	var languages []model.Language
	for rows.Next() {
		var lang model.Language
		if err := rows.Scan(&lang.ID, &lang.Name, &lang.ColorCode); err != nil {
			return nil, fmt.Errorf("sqlite: scanning language row: %w", err)
		}
		languages = append(languages, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating languages: %w", err)
	}

	return languages, nil
}

func (r *LanguageRepo) Update(ctx context.Context, lang *model.Language) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE languages SET name = ?, color_code = ? WHERE id = ?`,
		lang.Name, lang.ColorCode, lang.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", lang.Name))
		}
		return fmt.Errorf("sqlite: updating language %s: %w", lang.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("language", lang.ID)
	}

	return nil
}

// Delete removes a language. Snippets that reference it are detached — the
// ON DELETE SET NULL rule nulls their language_id — never deleted, so a
// catalog cleanup can't destroy user content.
func (r *LanguageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM languages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting language %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("language", id)
	}

	return nil
}
