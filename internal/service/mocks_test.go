package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
)

// Hand-written in-memory mocks for the repository interfaces. Each stores
// copies, not pointers, so tests cannot mutate mock state through returned
// values.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func adminActor() *model.User {
	return &model.User{ID: "admin-1", Username: "admin", Role: model.RoleAdmin}
}

func editorActor() *model.User {
	return &model.User{ID: "editor-1", Username: "editor", Role: model.RoleEditor}
}

func readerActor() *model.User {
	return &model.User{ID: "reader-1", Username: "reader", Role: model.RoleUser}
}

// ---- users ----

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email already registered")
		}
		if u.Username == user.Username {
			return apperror.Conflict("user", "username already taken")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.UpdatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID && u.GitHubID != 0 {
			u.Email = user.Email
			*user = *u
			return nil
		}
	}
	return m.Create(context.Background(), user)
}

// ---- languages ----

type mockLanguageRepo struct {
	languages map[string]*model.Language
	nextID    int
}

var _ repository.LanguageRepository = (*mockLanguageRepo)(nil)

func newMockLanguageRepo() *mockLanguageRepo {
	return &mockLanguageRepo{languages: make(map[string]*model.Language)}
}

func (m *mockLanguageRepo) Create(_ context.Context, lang *model.Language) error {
	for _, l := range m.languages {
		if l.Name == lang.Name {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", lang.Name))
		}
	}
	m.nextID++
	lang.ID = fmt.Sprintf("lang-%d", m.nextID)
	stored := *lang
	m.languages[lang.ID] = &stored
	return nil
}

func (m *mockLanguageRepo) GetByID(_ context.Context, id string) (*model.Language, error) {
	l, ok := m.languages[id]
	if !ok {
		return nil, apperror.NotFound("language", id)
	}
	result := *l
	return &result, nil
}

func (m *mockLanguageRepo) List(_ context.Context) ([]model.Language, error) {
	result := make([]model.Language, 0, len(m.languages))
	for _, l := range m.languages {
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockLanguageRepo) Update(_ context.Context, lang *model.Language) error {
	if _, ok := m.languages[lang.ID]; !ok {
		return apperror.NotFound("language", lang.ID)
	}
	for id, l := range m.languages {
		if id != lang.ID && l.Name == lang.Name {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", lang.Name))
		}
	}
	stored := *lang
	m.languages[lang.ID] = &stored
	return nil
}

func (m *mockLanguageRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.languages[id]; !ok {
		return apperror.NotFound("language", id)
	}
	delete(m.languages, id)
	return nil
}

// ---- snippets ----

type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	nextID   int
}

var _ repository.SnippetRepository = (*mockSnippetRepo)(nil)

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[string]*model.Snippet)}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	m.nextID++
	snippet.ID = fmt.Sprintf("snip-%d", m.nextID)
	snippet.CreatedAt = time.Now()
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	s, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := *s
	return &result, nil
}

func (m *mockSnippetRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	result := make([]model.Snippet, 0, len(m.snippets))
	for _, s := range m.snippets {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if opts.Offset >= len(result) {
		return []model.Snippet{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

// ---- bookmarks ----

// mockBookmarkRepo enforces pair uniqueness like the real schema does. The
// onInsert hook lets toggle tests interleave a concurrent writer between
// the service's lookup and its insert.
type mockBookmarkRepo struct {
	bookmarks map[string]*model.Bookmark
	nextID    int
	onInsert  func()
}

var _ repository.BookmarkRepository = (*mockBookmarkRepo)(nil)

func newMockBookmarkRepo() *mockBookmarkRepo {
	return &mockBookmarkRepo{bookmarks: make(map[string]*model.Bookmark)}
}

func (m *mockBookmarkRepo) GetByPair(_ context.Context, userID, snippetID string) (*model.Bookmark, error) {
	for _, b := range m.bookmarks {
		if b.UserID == userID && b.SnippetID == snippetID {
			result := *b
			return &result, nil
		}
	}
	return nil, apperror.NotFound("bookmark", userID+"/"+snippetID)
}

func (m *mockBookmarkRepo) Insert(_ context.Context, bookmark *model.Bookmark) error {
	if m.onInsert != nil {
		hook := m.onInsert
		m.onInsert = nil
		hook()
	}
	for _, b := range m.bookmarks {
		if b.UserID == bookmark.UserID && b.SnippetID == bookmark.SnippetID {
			return apperror.Conflict("bookmark", "snippet already bookmarked")
		}
	}
	m.nextID++
	bookmark.ID = fmt.Sprintf("bm-%d", m.nextID)
	bookmark.BookmarkedAt = time.Now()
	stored := *bookmark
	m.bookmarks[bookmark.ID] = &stored
	return nil
}

func (m *mockBookmarkRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.bookmarks[id]; !ok {
		return apperror.NotFound("bookmark", id)
	}
	delete(m.bookmarks, id)
	return nil
}

func (m *mockBookmarkRepo) ListByUser(_ context.Context, userID string) ([]model.Bookmark, error) {
	var result []model.Bookmark
	for _, b := range m.bookmarks {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BookmarkedAt.After(result[j].BookmarkedAt) })
	return result, nil
}

// directInsert seeds a bookmark without going through the service.
func (m *mockBookmarkRepo) directInsert(t *testing.T, userID, snippetID string) *model.Bookmark {
	t.Helper()
	b := &model.Bookmark{UserID: userID, SnippetID: snippetID}
	if err := m.Insert(context.Background(), b); err != nil {
		t.Fatalf("failed to seed bookmark: %v", err)
	}
	return b
}
