package service

import (
	"context"
	"errors"
	"fmt"

	"envios-web/internal/core/logger"
	sessiondomain "envios-web/internal/features/session/domain"
	"envios-web/internal/features/users/domain"
	"envios-web/internal/features/users/ports"

	"go.uber.org/zap"
)

// DeleteConfirmation is the question a user delete must be confirmed against.
const DeleteConfirmation = "¿Estás seguro de que quieres eliminar este usuario?"

var (
	// ErrConfirmationRequired is returned for a delete that was not confirmed.
	ErrConfirmationRequired = errors.New("delete not confirmed")
	// ErrRefreshFailed wraps a list reload that failed after a successful mutation.
	ErrRefreshFailed = errors.New("user list refresh failed")
)

// UserService backs the user administration screen.
type UserService struct {
	api ports.UserAPI
	log *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(api ports.UserAPI) *UserService {
	return &UserService{api: api, log: logger.Named("users")}
}

// List returns every user passing f.
func (s *UserService) List(ctx context.Context, f domain.Filter) (domain.Listing, error) {
	users, err := s.api.List(ctx)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to list users: %w", err)
	}
	return domain.NewListing(users, f), nil
}

// Edit returns the prefilled edit form of a user.
func (s *UserService) Edit(ctx context.Context, id string) (domain.User, domain.Update, error) {
	u, err := s.api.Get(ctx, id)
	if err != nil {
		return domain.User{}, domain.Update{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return u, domain.NewUpdate(u), nil
}

// Update saves the edit form and returns the reloaded list under f.
func (s *UserService) Update(ctx context.Context, id string, upd domain.Update, f domain.Filter) (domain.Listing, error) {
	upd.Normalize()
	if err := upd.Validate(); err != nil {
		return domain.Listing{}, err
	}
	if err := s.api.Update(ctx, id, upd); err != nil {
		return domain.Listing{}, fmt.Errorf("user update failed: %w", err)
	}
	s.log.Info("User updated", zap.String("user_id", id), zap.String("role", upd.Role))
	return s.reload(ctx, f)
}

// Delete removes a user once confirmed and returns the reloaded list under f.
func (s *UserService) Delete(ctx context.Context, id string, confirmed bool, f domain.Filter) (domain.Listing, error) {
	if !confirmed {
		return domain.Listing{}, ErrConfirmationRequired
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return domain.Listing{}, fmt.Errorf("user delete failed: %w", err)
	}
	s.log.Info("User deleted", zap.String("user_id", id))
	return s.reload(ctx, f)
}

// RegisterAdmin creates a staff account. The sign-up rules of customers apply.
func (s *UserService) RegisterAdmin(ctx context.Context, r sessiondomain.Registration) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.api.Register(ctx, r, domain.RoleAdmin); err != nil {
		return fmt.Errorf("admin registration failed: %w", err)
	}
	s.log.Info("Admin registered", zap.String("email", r.Email))
	return nil
}

func (s *UserService) reload(ctx context.Context, f domain.Filter) (domain.Listing, error) {
	l, err := s.List(ctx, f)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return l, nil
}
