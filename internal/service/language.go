package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/authz"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
	"github.com/manterx/codesnip/internal/validation"
)

// LanguageService manages the language catalog. Reads are public; every
// mutation requires an admin actor. Names are unique and case-sensitive,
// so "Go" and "go" are distinct entries.
type LanguageService struct {
	languages repository.LanguageRepository
	logger    *slog.Logger
}

func NewLanguageService(languages repository.LanguageRepository, logger *slog.Logger) *LanguageService {
	return &LanguageService{
		languages: languages,
		logger:    logger,
	}
}

type CreateLanguageInput struct {
	Name      string `json:"name" validate:"required,max=50"`
	ColorCode string `json:"colorCode" validate:"required,displaycolor"`
}

// UpdateLanguageInput carries partial updates: nil means "leave unchanged".
type UpdateLanguageInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=50"`
	ColorCode *string `json:"colorCode" validate:"omitempty,displaycolor"`
}

// Create adds a catalog entry. Returns Conflict if the name is taken.
func (s *LanguageService) Create(ctx context.Context, actor *model.User, input CreateLanguageInput) (*model.Language, error) {
	if !authz.CanManageLanguages(actor) {
		return nil, apperror.Forbidden("only admins can manage the language catalog")
	}

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	lang := &model.Language{
		Name:      input.Name,
		ColorCode: input.ColorCode,
	}

	if err := s.languages.Create(ctx, lang); err != nil {
		return nil, err
	}

	s.logger.Info("language created",
		slog.String("id", lang.ID),
		slog.String("name", lang.Name),
		slog.String("userID", actor.ID),
	)

	return lang, nil
}

// List returns the full catalog ordered by name. Public.
func (s *LanguageService) List(ctx context.Context) ([]model.Language, error) {
	langs, err := s.languages.List(ctx)
	if err != nil {
		s.logger.Error("failed to list languages", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	return langs, nil
}

// GetByID returns a single catalog entry. Public.
func (s *LanguageService) GetByID(ctx context.Context, id string) (*model.Language, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "language ID is required")
	}
	return s.languages.GetByID(ctx, id)
}

// Update renames or recolors an entry. A rename onto an existing name is
// Conflict, same as Create.
func (s *LanguageService) Update(ctx context.Context, actor *model.User, id string, input UpdateLanguageInput) (*model.Language, error) {
	if !authz.CanManageLanguages(actor) {
		return nil, apperror.Forbidden("only admins can manage the language catalog")
	}
	if id == "" {
		return nil, apperror.ValidationFailed("id", "language ID is required")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	lang, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		lang.Name = *input.Name
	}
	if input.ColorCode != nil {
		lang.ColorCode = *input.ColorCode
	}

	if err := s.languages.Update(ctx, lang); err != nil {
		return nil, err
	}

	s.logger.Info("language updated",
		slog.String("id", id),
		slog.String("userID", actor.ID),
	)

	return lang, nil
}

// Delete removes a catalog entry. Snippets referencing it are detached by
// the schema, not deleted.
func (s *LanguageService) Delete(ctx context.Context, actor *model.User, id string) error {
	if !authz.CanManageLanguages(actor) {
		return apperror.Forbidden("only admins can manage the language catalog")
	}
	if id == "" {
		return apperror.ValidationFailed("id", "language ID is required")
	}

	if err := s.languages.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("language deleted",
		slog.String("id", id),
		slog.String("userID", actor.ID),
	)

	return nil
}
