package ports

import (
	"context"

	sessiondomain "envios-web/internal/features/session/domain"
	"envios-web/internal/features/users/domain"
)

// UserAPI is the remote /users resource.
type UserAPI interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	Update(ctx context.Context, id string, upd domain.Update) error
	Delete(ctx context.Context, id string) error
	// Register creates an account holding role.
	Register(ctx context.Context, r sessiondomain.Registration, role string) error
}
