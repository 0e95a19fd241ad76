package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tendant/simple-admin-console/pkg/domain"
)

// LoginResult is a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// SignupInput is the body of an invite acceptance.
type SignupInput struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.callJSON(ctx, http.MethodPost, "/users/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	if env.Token == "" {
		return nil, domain.ErrInvalidCredentials
	}

	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: env.Token, User: p.User}, nil
}

// CheckToken asks the backend whether token is still valid.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}
	env, err := c.callJSON(ctx, http.MethodGet, "/users/checkToken", token, nil)
	if err != nil {
		return err
	}
	if !env.success() {
		return domain.ErrInvalidToken
	}
	return nil
}

// Signup completes an invitation. The invite token authorizes the call.
func (c *Client) Signup(ctx context.Context, inviteToken string, in SignupInput) (string, error) {
	env, err := c.callJSON(ctx, http.MethodPost, "/users/signup", inviteToken, in)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ForgotPassword requests a password reset email and returns the backend's message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.callJSON(ctx, http.MethodPost, "/users/forgotPassword", "", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	if !env.success() {
		return "", fmt.Errorf("forgot password: status %q", env.Status)
	}
	return env.Message, nil
}
