// Package vault adapts the HashiCorp Vault API client to the identity lookups
// the router needs: exchanging a caller's JWT or username/password for the
// metadata attached to the matching Vault entity.
package vault

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/ctlabs/taskrouter/internal/config"
)

// ErrNoAuthInfo is returned when a login response has no auth block.
var ErrNoAuthInfo = errors.New("vault login response has no auth data")

// Client performs logins against the configured auth mounts.
type Client struct {
	api              *vaultapi.Client
	jwtAuthPath      string
	jwtRole          string
	userpassAuthPath string
}

// NewClient builds a Client from cfg. Automatic retries are disabled so each
// login is exactly one round-trip.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	apiCfg := vaultapi.DefaultConfig()
	if apiCfg.Error != nil {
		return nil, fmt.Errorf("failed to build vault config: %w", apiCfg.Error)
	}
	apiCfg.Address = cfg.URL
	apiCfg.MaxRetries = 0

	api, err := vaultapi.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	api.SetToken(cfg.Token)

	return &Client{
		api:              api,
		jwtAuthPath:      strings.Trim(cfg.JWTAuthPath, "/"),
		jwtRole:          cfg.JWTRole,
		userpassAuthPath: strings.Trim(cfg.UserpassAuthPath, "/"),
	}, nil
}

// LoginJWT logs in with a bearer JWT under the configured role and returns
// the entity metadata.
func (c *Client) LoginJWT(ctx context.Context, token string) (map[string]string, error) {
	return c.login(ctx, c.jwtAuthPath+"/login", map[string]interface{}{
		"jwt":  token,
		"role": c.jwtRole,
	})
}

// LoginUserpass logs in with username and password and returns the entity
// metadata.
func (c *Client) LoginUserpass(ctx context.Context, username, password string) (map[string]string, error) {
	return c.login(ctx, c.userpassAuthPath+"/login/"+url.PathEscape(username), map[string]interface{}{
		"password": password,
	})
}

func (c *Client) login(ctx context.Context, path string, data map[string]interface{}) (map[string]string, error) {
	secret, err := c.api.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("vault login at %s: %w", path, err)
	}
	if secret == nil || secret.Auth == nil {
		return nil, fmt.Errorf("vault login at %s: %w", path, ErrNoAuthInfo)
	}

	metadata := secret.Auth.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return metadata, nil
}

// CheckToken verifies the router's own token with a lookup-self call.
func (c *Client) CheckToken(ctx context.Context) error {
	if _, err := c.api.Auth().Token().LookupSelfWithContext(ctx); err != nil {
		return fmt.Errorf("vault token lookup failed: %w", err)
	}
	return nil
}
