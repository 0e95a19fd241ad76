package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/tendant/simple-admin-console/pkg/domain"
)

// ListTenants lists all tenants.
func (c *Client) ListTenants(ctx context.Context, token string) ([]domain.Tenant, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/tenants", token, nil)
	if err != nil {
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return p.Tenants, nil
}

// GetTenant fetches one tenant.
func (c *Client) GetTenant(ctx context.Context, token, id string) (*domain.Tenant, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/tenants/"+url.PathEscape(id), token, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return tenantOf(env)
}

// CreateTenant creates a tenant.
func (c *Client) CreateTenant(ctx context.Context, token string, in domain.TenantInput) (*domain.Tenant, error) {
	env, err := c.callJSON(ctx, http.MethodPost, "/tenants", token, in)
	if err != nil {
		return nil, err
	}
	return tenantOf(env)
}

// UpdateTenant replaces a tenant's editable fields.
func (c *Client) UpdateTenant(ctx context.Context, token, id string, in domain.TenantInput) (*domain.Tenant, error) {
	env, err := c.callJSON(ctx, http.MethodPatch, "/tenants/"+url.PathEscape(id), token, in)
	if err != nil {
		return nil, err
	}
	return tenantOf(env)
}

// DeleteTenant deletes a tenant.
func (c *Client) DeleteTenant(ctx context.Context, token, id string) error {
	_, err := c.callJSON(ctx, http.MethodDelete, "/tenants/"+url.PathEscape(id), token, nil)
	return err
}

func tenantOf(env *envelope) (*domain.Tenant, error) {
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return p.Tenant, nil
}
