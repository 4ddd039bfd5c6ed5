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

// BookmarkRepo implements repository.BookmarkRepository on the shared pool.
type BookmarkRepo struct {
	conn *sql.DB
}

// compile-time interface check
var _ repository.BookmarkRepository = (*BookmarkRepo)(nil)

// GetByPair looks up the bookmark for a (user, snippet) pair. NotFound means
// the user has not bookmarked that snippet.
func (r *BookmarkRepo) GetByPair(ctx context.Context, userID, snippetID string) (*model.Bookmark, error) {
	var b model.Bookmark

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, snippet_id, bookmarked_at
		 FROM bookmarks
		 WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	).Scan(&b.ID, &b.UserID, &b.SnippetID, &b.BookmarkedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("bookmark", userID+"/"+snippetID)
		}
		return nil, fmt.Errorf("sqlite: getting bookmark: %w", err)
	}

	return &b, nil
}

// Insert creates a bookmark row. The UNIQUE(user_id, snippet_id) constraint
// guarantees at most one row per pair; a racing duplicate insert comes back
// as Conflict so the caller can re-check the pair.
func (r *BookmarkRepo) Insert(ctx context.Context, bookmark *model.Bookmark) error {
	bookmark.ID = xid.New().String()
	bookmark.BookmarkedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, snippet_id, bookmarked_at)
		 VALUES (?, ?, ?, ?)`,
		bookmark.ID, bookmark.UserID, bookmark.SnippetID, bookmark.BookmarkedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("bookmark", "snippet already bookmarked")
		}
		return fmt.Errorf("sqlite: inserting bookmark: %w", err)
	}

	return nil
}

// Delete removes a bookmark by id. NotFound means another request removed it
// first.
func (r *BookmarkRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bookmark %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", id)
	}

	return nil
}

// ListByUser retrieves a user's bookmarks newest-first, each with its snippet
// (and the snippet's owner and language) populated.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID string) ([]model.Bookmark, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.snippet_id, b.bookmarked_at,
		        s.id, s.title, s.code_content, s.description, s.language_id, s.user_id, s.created_at,
		        u.id, u.username, u.email, u.role, u.created_at, u.updated_at,
		        l.id, l.name, l.color_code
		 FROM bookmarks b
		 JOIN snippets s ON s.id = b.snippet_id
		 JOIN users u ON u.id = s.user_id
		 LEFT JOIN languages l ON l.id = s.language_id
		 WHERE b.user_id = ?
		 ORDER BY b.bookmarked_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		var (
			b          model.Bookmark
			s          model.Snippet
			languageID sql.NullString

			owner     model.User
			ownerRole string

			langID, langName, langColor sql.NullString
		)

		err := rows.Scan(
			&b.ID, &b.UserID, &b.SnippetID, &b.BookmarkedAt,
			&s.ID, &s.Title, &s.CodeContent, &s.Description, &languageID, &s.UserID, &s.CreatedAt,
			&owner.ID, &owner.Username, &owner.Email, &ownerRole, &owner.CreatedAt, &owner.UpdatedAt,
			&langID, &langName, &langColor,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
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

		b.Snippet = &s
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}
