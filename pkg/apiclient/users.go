package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/tendant/simple-admin-console/pkg/domain"
)

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), token, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, domain.ErrUserNotFound
	}
	return p.User, nil
}

// ListTenantUsers lists the users of the caller's tenant.
func (c *Client) ListTenantUsers(ctx context.Context, token string) ([]domain.User, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/users/tenant", token, nil)
	if err != nil {
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return p.Users, nil
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	_, err := c.callJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil)
	return err
}

// UpdateRole changes a user's role.
func (c *Client) UpdateRole(ctx context.Context, token, id string, role domain.Role) error {
	_, err := c.callJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), token, map[string]string{"role": string(role)})
	return err
}

// Invite sends invitations to every address.
func (c *Client) Invite(ctx context.Context, token string, emails []string) (string, error) {
	env, err := c.callJSON(ctx, http.MethodPost, "/users/invite", token, map[string]string{
		"email": strings.Join(emails, ", "),
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
