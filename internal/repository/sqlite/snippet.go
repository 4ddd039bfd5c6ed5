package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
)

// SnippetRepo implements repository.SnippetRepository on the shared pool.
type SnippetRepo struct {
	conn *sql.DB
}

// compile-time interface check
var _ repository.SnippetRepository = (*SnippetRepo)(nil)

// snippetSelect is the eager-loading query every read goes through: the
// snippet row, its owner, and its language in one round trip. The language
// join is a LEFT JOIN because language_id can be NULL after a catalog entry
// is deleted; the owner join is INNER because user deletion cascades the
// snippet away, so an ownerless snippet cannot exist.
const snippetSelect = `
	SELECT s.id, s.title, s.code_content, s.description, s.language_id, s.user_id, s.created_at,
	       u.id, u.username, u.email, u.role, u.created_at, u.updated_at,
	       l.id, l.name, l.color_code
	FROM snippets s
	JOIN users u ON u.id = s.user_id
	LEFT JOIN languages l ON l.id = s.language_id`

// Create inserts a new snippet, generating its ID and creation timestamp.
// Foreign keys are validated by the service layer first (for clean NotFound
// errors), and enforced here by the schema as a backstop.
func (r *SnippetRepo) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	snippet.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, code_content, description, language_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.CodeContent,
		snippet.Description,
		nullableString(snippet.LanguageID),
		snippet.UserID,
		snippet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}

	return nil
}

// GetByID retrieves a snippet with its owner and language populated.
func (r *SnippetRepo) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := r.conn.QueryRowContext(ctx, snippetSelect+` WHERE s.id = ?`, id)

	s, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	return s, nil
}

// List retrieves snippets newest-first with owner and language populated.
func (r *SnippetRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx,
		snippetSelect+` ORDER BY s.created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// Update persists title, code, description, and language changes. Owner and
// creation time are immutable — they are simply not in the SET clause.
func (r *SnippetRepo) Update(ctx context.Context, snippet *model.Snippet) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code_content = ?, description = ?, language_id = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.CodeContent,
		snippet.Description,
		nullableString(snippet.LanguageID),
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	return nil
}

// Delete removes a snippet. Bookmarks on it cascade away. Deleting an id
// that no longer exists is NotFound, not a silent success.
func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// scanSnippet reads one row of snippetSelect. The language columns come from
// a LEFT JOIN, so they scan through nullable wrappers.
func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var (
		s          model.Snippet
		languageID sql.NullString

		owner     model.User
		ownerRole string

		langID, langName, langColor sql.NullString
	)

	err := row.Scan(
		&s.ID, &s.Title, &s.CodeContent, &s.Description, &languageID, &s.UserID, &s.CreatedAt,
		&owner.ID, &owner.Username, &owner.Email, &ownerRole, &owner.CreatedAt, &owner.UpdatedAt,
		&langID, &langName, &langColor,
	)
	if err != nil {
		return nil, err
	}

	s.LanguageID = languageID.String
	owner.Role = model.Role(ownerRole)
	s.Owner = &owner

	if langID.Valid {
		s.Language = &model.Language{
			ID:        langID.String,
			Name:      langName.String,
			ColorCode: langColor.String,
		}
	}

	return &s, nil
}

// nullableString maps "" to NULL for optional foreign keys.
func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
