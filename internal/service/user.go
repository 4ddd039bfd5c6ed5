package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/authz"
	"github.com/manterx/codesnip/internal/model"
	"github.com/manterx/codesnip/internal/repository"
	"github.com/manterx/codesnip/internal/validation"
)

// UserService handles registration, login, GitHub sign-in, and the admin
// user management operations.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued JWT so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is the admin payload for role and profile changes. Nil
// means "leave unchanged".
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor user"`
}

// Register creates an account with the default reader role and signs the
// user in. Roles are never self-assigned: promotion to editor or admin is
// an admin operation (UpdateUser).
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// Login verifies the credentials and issues a token. Unknown email and
// wrong password produce the same error so the endpoint does not leak
// which accounts exist.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("credentials", "invalid email or password")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, input.Password) != nil {
		return nil, apperror.ValidationFailed("credentials", "invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issueToken(user)
}

// LoginGitHub signs a user in from an exchanged GitHub profile, creating
// the account on first login. The GitHub ID is the stable key; email and
// username follow whatever GitHub currently reports.
func (s *UserService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service: GitHub user must not be nil")
	}

	user := &model.User{
		Username: ghUser.Login,
		Email:    ghUser.Email,
		Role:     model.RoleUser,
		GitHubID: ghUser.ID,
	}

	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting GitHub user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

func (s *UserService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetByID returns a user record. Used by the /api/me handler.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all accounts. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperror.Forbidden("only admins can manage users")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateUser applies profile or role changes to any account. Admin only.
// This is the one path that changes roles; the change takes effect on the
// target's next request because the middleware re-reads the user row.
func (s *UserService) UpdateUser(ctx context.Context, actor *model.User, id string, input UpdateUserInput) (*model.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperror.Forbidden("only admins can manage users")
	}
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		user.Role = model.Role(*input.Role)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated",
		slog.String("id", id),
		slog.String("adminID", actor.ID),
	)

	return user, nil
}

// DeleteUser removes an account. Admin only, and admins cannot delete
// themselves — that path loses the last admin too easily. The schema
// cascades the user's snippets and bookmarks away.
func (s *UserService) DeleteUser(ctx context.Context, actor *model.User, id string) error {
	if !authz.CanManageUsers(actor) {
		return apperror.Forbidden("only admins can manage users")
	}
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}
	if id == actor.ID {
		return apperror.ValidationFailed("id", "you cannot delete your own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.String("id", id),
		slog.String("adminID", actor.ID),
	)

	return nil
}
