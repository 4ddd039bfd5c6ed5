package service

import (
	"context"
	"errors"
	"testing"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
)

func newTestBookmarkService(t *testing.T) (*BookmarkService, *mockBookmarkRepo, *mockSnippetRepo) {
	t.Helper()
	bookmarks := newMockBookmarkRepo()
	snippets := newMockSnippetRepo()
	svc := NewBookmarkService(bookmarks, snippets, testLogger())
	return svc, bookmarks, snippets
}

func seedSnippet(t *testing.T, snippets *mockSnippetRepo, ownerID string) *model.Snippet {
	t.Helper()
	s := &model.Snippet{Title: "seed", CodeContent: "code", UserID: ownerID}
	if err := snippets.Create(context.Background(), s); err != nil {
		t.Fatalf("failed to seed snippet: %v", err)
	}
	return s
}

func TestToggle_AddsWhenAbsent(t *testing.T) {
	svc, _, snippets := newTestBookmarkService(t)
	snippet := seedSnippet(t, snippets, "someone-else")

	result, err := svc.Toggle(context.Background(), readerActor(), snippet.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !result.Bookmarked {
		t.Error("Toggle() on absent pair should report bookmarked=true")
	}
}

func TestToggle_RemovesWhenPresent(t *testing.T) {
	svc, bookmarks, snippets := newTestBookmarkService(t)
	actor := readerActor()
	snippet := seedSnippet(t, snippets, "someone-else")
	bookmarks.directInsert(t, actor.ID, snippet.ID)

	result, err := svc.Toggle(context.Background(), actor, snippet.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if result.Bookmarked {
		t.Error("Toggle() on present pair should report bookmarked=false")
	}

	if _, err := bookmarks.GetByPair(context.Background(), actor.ID, snippet.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("pair after toggle-off: error = %v, want ErrNotFound", err)
	}
}

func TestToggle_RoundTripRestoresState(t *testing.T) {
	svc, bookmarks, snippets := newTestBookmarkService(t)
	actor := readerActor()
	snippet := seedSnippet(t, snippets, "someone-else")

	for i, want := range []bool{true, false, true} {
		result, err := svc.Toggle(context.Background(), actor, snippet.ID)
		if err != nil {
			t.Fatalf("Toggle() #%d error = %v", i+1, err)
		}
		if result.Bookmarked != want {
			t.Errorf("Toggle() #%d bookmarked = %v, want %v", i+1, result.Bookmarked, want)
		}
	}

	list, err := bookmarks.ListByUser(context.Background(), actor.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("after odd number of toggles, %d bookmarks remain, want 1", len(list))
	}
}

func TestToggle_OwnSnippet(t *testing.T) {
	svc, _, snippets := newTestBookmarkService(t)
	actor := editorActor()
	snippet := seedSnippet(t, snippets, actor.ID)

	result, err := svc.Toggle(context.Background(), actor, snippet.ID)
	if err != nil {
		t.Fatalf("Toggle() on own snippet error = %v", err)
	}
	if !result.Bookmarked {
		t.Error("bookmarking your own snippet should succeed")
	}
}

func TestToggle_UnknownSnippet(t *testing.T) {
	svc, _, _ := newTestBookmarkService(t)

	_, err := svc.Toggle(context.Background(), readerActor(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Toggle() on unknown snippet error = %v, want ErrNotFound", err)
	}
}

func TestToggle_InsertRaceReportsBookmarked(t *testing.T) {
	svc, bookmarks, snippets := newTestBookmarkService(t)
	actor := readerActor()
	snippet := seedSnippet(t, snippets, "someone-else")

	// A concurrent toggle wins the insert between this request's lookup and
	// its own insert. The conflicted insert means a row now exists, which is
	// the state this request wanted.
	bookmarks.onInsert = func() {
		bookmarks.directInsert(t, actor.ID, snippet.ID)
	}

	result, err := svc.Toggle(context.Background(), actor, snippet.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !result.Bookmarked {
		t.Error("Toggle() losing an insert race should still report bookmarked=true")
	}

	list, err := bookmarks.ListByUser(context.Background(), actor.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("%d bookmarks after race, want exactly 1", len(list))
	}
}

// alwaysConflictBookmarkRepo simulates the pathological interleaving where
// another toggle inserts ahead of every attempt and a third removes the row
// before every re-check: inserts conflict, lookups keep missing.
type alwaysConflictBookmarkRepo struct {
	*mockBookmarkRepo
	inserts int
}

func (m *alwaysConflictBookmarkRepo) Insert(_ context.Context, _ *model.Bookmark) error {
	m.inserts++
	return apperror.Conflict("bookmark", "snippet already bookmarked")
}

func TestToggle_RepeatedInsertConflictGivesUp(t *testing.T) {
	bookmarks := &alwaysConflictBookmarkRepo{mockBookmarkRepo: newMockBookmarkRepo()}
	snippets := newMockSnippetRepo()
	svc := NewBookmarkService(bookmarks, snippets, testLogger())
	snippet := seedSnippet(t, snippets, "someone-else")

	_, err := svc.Toggle(context.Background(), readerActor(), snippet.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Toggle() under repeated conflicts error = %v, want ErrConflict", err)
	}
	if bookmarks.inserts != 2 {
		t.Errorf("insert attempted %d times, want exactly 2", bookmarks.inserts)
	}
}

func TestListForUser_OnlyOwnBookmarks(t *testing.T) {
	svc, bookmarks, snippets := newTestBookmarkService(t)
	actor := readerActor()
	s1 := seedSnippet(t, snippets, "author")
	s2 := seedSnippet(t, snippets, "author")

	bookmarks.directInsert(t, actor.ID, s1.ID)
	bookmarks.directInsert(t, "other-user", s2.ID)

	list, err := svc.ListForUser(context.Background(), actor)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListForUser() returned %d bookmarks, want 1", len(list))
	}
	if list[0].SnippetID != s1.ID {
		t.Errorf("bookmark snippet = %s, want %s", list[0].SnippetID, s1.ID)
	}
}
