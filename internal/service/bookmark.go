package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
)

// BookmarkService implements the bookmark toggle and listing. A bookmark is
// a (user, snippet) pair; the repository's unique constraint on that pair is
// the source of truth under concurrent toggles.
type BookmarkService struct {
	bookmarks repository.BookmarkRepository
	snippets  repository.SnippetRepository
	logger    *slog.Logger
}

func NewBookmarkService(
	bookmarks repository.BookmarkRepository,
	snippets repository.SnippetRepository,
	logger *slog.Logger,
) *BookmarkService {
	return &BookmarkService{
		bookmarks: bookmarks,
		snippets:  snippets,
		logger:    logger,
	}
}

// ToggleResult reports the state of the pair after a toggle.
type ToggleResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// Toggle flips the bookmark state for (actor, snippet): absent becomes
// present, present becomes absent. Any authenticated user may bookmark any
// snippet, including their own.
//
// Concurrency: lookup-then-decide is not atomic, so two simultaneous
// toggles can both see "absent" and race to insert. The loser's insert hits
// the unique constraint; at that point a row exists, which is exactly what
// the loser was trying to achieve, so it reports bookmarked=true. A delete
// racing ahead of the re-check gets one retry. Either way at most one row
// per pair survives, enforced by the constraint itself.
func (s *BookmarkService) Toggle(ctx context.Context, actor *model.User, snippetID string) (*ToggleResult, error) {
	if snippetID == "" {
		return nil, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}

	// Confirm the snippet exists so a bad ID is NotFound, not a foreign key
	// failure.
	if _, err := s.snippets.GetByID(ctx, snippetID); err != nil {
		return nil, err
	}

	existing, err := s.bookmarks.GetByPair(ctx, actor.ID, snippetID)
	switch {
	case err == nil:
		if err := s.bookmarks.Delete(ctx, existing.ID); err != nil {
			// A concurrent toggle removed it first. The desired end state
			// (no bookmark) holds, so report it rather than failing.
			if errors.Is(err, apperror.ErrNotFound) {
				return &ToggleResult{Bookmarked: false}, nil
			}
			return nil, fmt.Errorf("removing bookmark: %w", err)
		}
		s.logger.Info("bookmark removed",
			slog.String("userID", actor.ID),
			slog.String("snippetID", snippetID),
		)
		return &ToggleResult{Bookmarked: false}, nil

	case errors.Is(err, apperror.ErrNotFound):
		bookmarked, err := s.insertWithRetry(ctx, actor.ID, snippetID)
		if err != nil {
			return nil, err
		}
		if bookmarked {
			s.logger.Info("bookmark added",
				slog.String("userID", actor.ID),
				slog.String("snippetID", snippetID),
			)
		}
		return &ToggleResult{Bookmarked: bookmarked}, nil

	default:
		return nil, fmt.Errorf("looking up bookmark: %w", err)
	}
}

// insertWithRetry handles the insert side of the toggle. On a unique
// conflict it re-checks the pair: if a row is there, the pair is bookmarked
// and the intent is satisfied; if it vanished again, retry the insert once.
func (s *BookmarkService) insertWithRetry(ctx context.Context, userID, snippetID string) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		bookmark := &model.Bookmark{UserID: userID, SnippetID: snippetID}
		err := s.bookmarks.Insert(ctx, bookmark)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return false, fmt.Errorf("adding bookmark: %w", err)
		}

		if _, err := s.bookmarks.GetByPair(ctx, userID, snippetID); err == nil {
			return true, nil
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return false, fmt.Errorf("re-checking bookmark: %w", err)
		}
		// Row gone again between conflict and re-check. Loop for one more
		// insert attempt.
	}
	return false, apperror.Conflict("bookmark", "bookmark is being modified concurrently")
}

// ListForUser returns the actor's bookmarks newest-first, each carrying its
// snippet with owner and language populated.
func (s *BookmarkService) ListForUser(ctx context.Context, actor *model.User) ([]model.Bookmark, error) {
	bookmarks, err := s.bookmarks.ListByUser(ctx, actor.ID)
	if err != nil {
		s.logger.Error("failed to list bookmarks",
			slog.String("userID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	return bookmarks, nil
}
