package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"envios-web/internal/core/apiclient"
	sessiondomain "envios-web/internal/features/session/domain"
	"envios-web/internal/features/users/domain"
)

// APIUserAdapter implements ports.UserAPI against the /users resource.
type APIUserAdapter struct {
	client *apiclient.Client
}

// NewAPIUserAdapter creates a new adapter.
func NewAPIUserAdapter(client *apiclient.Client) *APIUserAdapter {
	return &APIUserAdapter{client: client}
}

// List reads /users/all. The endpoint answers a bare array, but the list normalizer also
// accepts the wrapped shapes.
func (a *APIUserAdapter) List(ctx context.Context) ([]domain.User, error) {
	var raw json.RawMessage
	if err := a.client.Get(ctx, "/users/all", nil, &raw); err != nil {
		return nil, err
	}
	users, _, err := apiclient.DecodeList[domain.User](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Get reads one user.
func (a *APIUserAdapter) Get(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	if err := a.client.Get(ctx, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Update replaces the editable fields of a user.
func (a *APIUserAdapter) Update(ctx context.Context, id string, upd domain.Update) error {
	return a.client.Put(ctx, "/users/"+url.PathEscape(id), upd, nil)
}

// Delete removes a user.
func (a *APIUserAdapter) Delete(ctx context.Context, id string) error {
	return a.client.Delete(ctx, "/users/"+url.PathEscape(id), nil)
}

type registerRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	DateOfBirth    string `json:"dateOfBirth"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Username       string `json:"username"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Role           string `json:"role"`
}

// Register posts to /users/register with an explicit role.
func (a *APIUserAdapter) Register(ctx context.Context, r sessiondomain.Registration, role string) error {
	return a.client.Post(ctx, "/users/register", registerRequest{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Password:       r.Password,
		DateOfBirth:    r.DateOfBirth,
		Phone:          r.Phone,
		City:           r.City,
		Username:       r.Username,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Role:           role,
	}, nil)
}
