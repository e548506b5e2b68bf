package adapters

import (
	"context"
	"fmt"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/features/session/domain"
	"envios-web/internal/features/session/ports"
)

// APIAuthenticator implements ports.Authenticator against the shipping API.
type APIAuthenticator struct {
	client *apiclient.Client
}

// NewAPIAuthenticator creates a new authenticator.
func NewAPIAuthenticator(client *apiclient.Client) *APIAuthenticator {
	return &APIAuthenticator{client: client}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login posts the credentials to /auth/login; the API calls the email "username".
func (a *APIAuthenticator) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	var res ports.LoginResult
	if err := a.client.Post(ctx, "/auth/login", loginRequest{Username: email, Password: password}, &res); err != nil {
		return ports.LoginResult{}, err
	}
	if res.AccessToken == "" {
		return ports.LoginResult{}, fmt.Errorf("login response without access token: %w", domain.ErrMalformedToken)
	}
	return res, nil
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

// Register posts a new customer to /users/register.
func (a *APIAuthenticator) Register(ctx context.Context, r domain.Registration) error {
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
		Role:           "BASIC",
	}, nil)
}
