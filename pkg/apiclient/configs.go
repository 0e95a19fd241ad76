package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/tendant/simple-admin-console/pkg/domain"
)

// ListConfigs lists every config entry visible to the caller.
func (c *Client) ListConfigs(ctx context.Context, token string) ([]domain.Config, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/configs/all", token, nil)
	if err != nil {
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return p.Configs, nil
}

// ConfigByKey fetches the caller's tenant config stored under key.
func (c *Client) ConfigByKey(ctx context.Context, token, key string) (*domain.Config, error) {
	env, err := c.callJSON(ctx, http.MethodGet, "/configs/key/"+url.PathEscape(key), token, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return configOf(env)
}

// GetTenantConfig fetches one config of a tenant.
func (c *Client) GetTenantConfig(ctx context.Context, token, tenantID, id string) (*domain.Config, error) {
	env, err := c.callJSON(ctx, http.MethodGet, tenantConfigPath(tenantID, id), token, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return configOf(env)
}

// CreateConfig creates a config entry.
func (c *Client) CreateConfig(ctx context.Context, token string, in domain.ConfigInput) error {
	_, err := c.callJSON(ctx, http.MethodPost, "/configs", token, in)
	return err
}

// UpdateTenantConfig updates a config entry of a tenant.
func (c *Client) UpdateTenantConfig(ctx context.Context, token, tenantID, id string, in domain.ConfigInput) error {
	_, err := c.callJSON(ctx, http.MethodPatch, tenantConfigPath(tenantID, id), token, in)
	return err
}

// UpdateConfigValue replaces only the value of a config entry.
func (c *Client) UpdateConfigValue(ctx context.Context, token, id string, value json.RawMessage) error {
	_, err := c.callJSON(ctx, http.MethodPatch, "/configs/"+url.PathEscape(id), token, map[string]json.RawMessage{
		"config_value": value,
	})
	return err
}

// DeleteConfig deletes a config entry.
func (c *Client) DeleteConfig(ctx context.Context, token, id string) error {
	_, err := c.callJSON(ctx, http.MethodDelete, "/configs/"+url.PathEscape(id), token, nil)
	return err
}

func configOf(env *envelope) (*domain.Config, error) {
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	if p.Config == nil {
		return nil, domain.ErrConfigNotFound
	}
	return p.Config, nil
}

func tenantConfigPath(tenantID, id string) string {
	return "/tenants/" + url.PathEscape(tenantID) + "/configs/" + url.PathEscape(id)
}
