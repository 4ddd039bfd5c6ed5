// Package repository declares the storage interfaces the service layer
// depends on. Services receive these interfaces (not *sqlite.DB) so tests
// can inject in-memory mocks and the database can be swapped without
// touching business logic.
package repository

import (
	"context"

	"github.com/manterx/codesnip/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the
	// username or email is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update persists role, email, username, and password hash changes.
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user; owned snippets and bookmarks cascade away.
	Delete(ctx context.Context, id string) error
	// UpsertGitHub inserts or refreshes a user keyed by their GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type LanguageRepository interface {
	// Create inserts a new language. Returns apperror.ErrConflict if the
	// name is already registered.
	Create(ctx context.Context, lang *model.Language) error
	GetByID(ctx context.Context, id string) (*model.Language, error)
	List(ctx context.Context) ([]model.Language, error)
	Update(ctx context.Context, lang *model.Language) error
	// Delete removes the language; referencing snippets are detached
	// (language_id set to NULL), never deleted.
	Delete(ctx context.Context, id string) error
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	// GetByID returns the snippet with Owner and Language populated.
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	// List returns snippets newest-first, each with Owner and Language
	// populated.
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

type BookmarkRepository interface {
	// GetByPair returns the bookmark for (userID, snippetID), or
	// apperror.ErrNotFound if the pair isn't bookmarked.
	GetByPair(ctx context.Context, userID, snippetID string) (*model.Bookmark, error)
	// Insert creates the bookmark row. A concurrent insert for the same
	// pair loses the race and gets apperror.ErrConflict — callers decide
	// how to recover.
	Insert(ctx context.Context, bookmark *model.Bookmark) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's bookmarks newest-first, each with its
	// snippet (and the snippet's language and owner) populated.
	ListByUser(ctx context.Context, userID string) ([]model.Bookmark, error)
}
