// Package service contains the business logic layer: validation, permission
// checks, and orchestration between repositories. Services accept plain Go
// values and return domain errors from the apperror package; they know
// nothing about HTTP. The handler layer translates both directions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/authz"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
	"github.com/manterx/codesnip/internal/validation"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SnippetService handles snippet CRUD with permission enforcement.
type SnippetService struct {
	snippets  repository.SnippetRepository
	languages repository.LanguageRepository
	logger    *slog.Logger
}

func NewSnippetService(
	snippets repository.SnippetRepository,
	languages repository.LanguageRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:  snippets,
		languages: languages,
		logger:    logger,
	}
}

// CreateSnippetInput is the payload for Create. Field names in validation
// errors follow the json tags.
type CreateSnippetInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	CodeContent string `json:"codeContent" validate:"required,max=100000"`
	Description string `json:"description" validate:"max=1000"`
	LanguageID  string `json:"languageId" validate:"required"`
}

// UpdateSnippetInput carries partial updates: nil pointers mean "leave
// unchanged". LanguageID set to the empty string detaches the snippet from
// the catalog.
type UpdateSnippetInput struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	CodeContent *string `json:"codeContent" validate:"omitempty,max=100000"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	LanguageID  *string `json:"languageId"`
}

// Create validates the input, checks the actor may publish snippets, and
// verifies the referenced language exists before inserting.
func (s *SnippetService) Create(ctx context.Context, actor *model.User, input CreateSnippetInput) (*model.Snippet, error) {
	if !authz.CanCreateSnippet(actor) {
		return nil, apperror.Forbidden("only editors and admins can create snippets")
	}

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// Resolve the language up front: a dangling reference surfaces as the
	// catalog's NotFound rather than a foreign key failure on insert.
	if _, err := s.languages.GetByID(ctx, input.LanguageID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolving language: %w", err)
	}

	snippet := &model.Snippet{
		Title:       input.Title,
		CodeContent: input.CodeContent,
		Description: input.Description,
		LanguageID:  input.LanguageID,
		UserID:      actor.ID,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", actor.ID),
	)

	// Re-read to return the snippet with owner and language populated.
	return s.snippets.GetByID(ctx, snippet.ID)
}

// GetByID retrieves a snippet. No authorization: snippets are public reads.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.snippets.GetByID(ctx, id)
}

// List retrieves snippets newest-first with pagination. Limit is clamped to
// 1-100 with a default of 20 so callers cannot request unbounded pages.
func (s *SnippetService) List(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.snippets.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update applies a partial update after confirming the actor owns the
// snippet or is an admin. The fetch-then-authorize order matters: the
// permission check needs the stored owner, not anything the caller claims.
func (s *SnippetService) Update(ctx context.Context, actor *model.User, id string, input UpdateSnippetInput) (*model.Snippet, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanMutateSnippet(actor, snippet) {
		return nil, apperror.Forbidden("you can only modify your own snippets")
	}

	if input.Title != nil {
		snippet.Title = *input.Title
	}
	if input.CodeContent != nil {
		snippet.CodeContent = *input.CodeContent
	}
	if input.Description != nil {
		snippet.Description = *input.Description
	}
	if input.LanguageID != nil {
		if *input.LanguageID != "" {
			if _, err := s.languages.GetByID(ctx, *input.LanguageID); err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					return nil, err
				}
				return nil, fmt.Errorf("resolving language: %w", err)
			}
		}
		snippet.LanguageID = *input.LanguageID
	}

	if err := s.snippets.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", id),
		slog.String("userID", actor.ID),
	)

	return s.snippets.GetByID(ctx, id)
}

// Delete removes a snippet after the same owner-or-admin check as Update.
func (s *SnippetService) Delete(ctx context.Context, actor *model.User, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanMutateSnippet(actor, snippet) {
		return apperror.Forbidden("you can only delete your own snippets")
	}

	if err := s.snippets.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("userID", actor.ID),
	)

	return nil
}
