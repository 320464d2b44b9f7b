// Package file loads the process configuration from a TOML file with an
// environment-variable overlay. The result is an explicit object constructed
// once at startup and injected everywhere; no component reads the environment
// ad hoc.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure Config implements the tenant directory port.
var _ driven.TenantDirectory = (*Config)(nil)

// ProviderCredentials are process-wide OAuth client credentials for one
// provider, used when a connection stores none of its own.
type ProviderCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// TenantConfig is per-tenant configuration owned by the tenant collaborator.
type TenantConfig struct {
	Timezone string `toml:"timezone"`
}

// Config is the full process configuration.
type Config struct {
	DatabasePath string                  `toml:"database_path"`
	Verbose      bool                    `toml:"verbose"`
	Google       ProviderCredentials     `toml:"google"`
	Microsoft    ProviderCredentials     `toml:"microsoft"`
	Tenants      map[string]TenantConfig `toml:"tenants"`
}

// Load reads the config file at path, falling back to
// ~/.calsync/config.toml, then overlays provider credentials from the
// environment (CALSYNC_GOOGLE_CLIENT_ID and friends). A missing file is not
// an error; the zero config with env overlay is returned.
func Load(path string) (*Config, error) {
	cfg := &Config{Tenants: map[string]TenantConfig{}}

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overlayEnv(&cfg.Google.ClientID, "CALSYNC_GOOGLE_CLIENT_ID")
	overlayEnv(&cfg.Google.ClientSecret, "CALSYNC_GOOGLE_CLIENT_SECRET")
	overlayEnv(&cfg.Microsoft.ClientID, "CALSYNC_MICROSOFT_CLIENT_ID")
	overlayEnv(&cfg.Microsoft.ClientSecret, "CALSYNC_MICROSOFT_CLIENT_SECRET")
	overlayEnv(&cfg.DatabasePath, "CALSYNC_DATABASE_PATH")

	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return data, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil //nolint:nilerr // no home directory means no default config
	}
	data, err := os.ReadFile(filepath.Join(home, ".calsync", "config.toml"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}
	return data, nil
}

func overlayEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Credentials returns the process-wide client credentials for a provider.
func (c *Config) Credentials(provider domain.ProviderType) (clientID, clientSecret string) {
	switch provider {
	case domain.ProviderGoogle:
		return c.Google.ClientID, c.Google.ClientSecret
	case domain.ProviderMicrosoft:
		return c.Microsoft.ClientID, c.Microsoft.ClientSecret
	default:
		return "", ""
	}
}

// Timezone returns the tenant's configured IANA timezone, defaulting to UTC.
func (c *Config) Timezone(tenantID string) string {
	if t, ok := c.Tenants[tenantID]; ok && t.Timezone != "" {
		return t.Timezone
	}
	return "UTC"
}
