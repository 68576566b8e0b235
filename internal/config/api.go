package config

import (
	"fmt"
	"os"

	"github.com/MGhunch/dot-file/pkg/formatting"
	"github.com/MGhunch/dot-file/pkg/middleware"
	"github.com/MGhunch/dot-file/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOTFILE_CORS_ENABLED",
	Origins:          "DOTFILE_CORS_ORIGINS",
	AllowedMethods:   "DOTFILE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOTFILE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOTFILE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOTFILE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DOTFILE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DOTFILE_PAGINATION_MAX_PAGE_SIZE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "DOTFILE_AUTH_ENABLED",
	Issuer:   "DOTFILE_AUTH_ISSUER",
	Audience: "DOTFILE_AUTH_AUDIENCE",
}

// APIConfig holds API routing, request limits, CORS, pagination and auth settings.
type APIConfig struct {
	BasePath       string                `toml:"base_path"`
	MaxRequestSize string                `toml:"max_request_size"`
	CORS           middleware.CORSConfig `toml:"cors"`
	Pagination     pagination.Config     `toml:"pagination"`
	Auth           middleware.AuthConfig `toml:"auth"`
}

// MaxRequestSizeBytes caps filing request bodies. Email bodies can carry
// inline markup, so the default is generous.
func (c *APIConfig) MaxRequestSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxRequestSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxRequestSize); err != nil {
		return fmt.Errorf("invalid max_request_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxRequestSize != "" {
		c.MaxRequestSize = overlay.MaxRequestSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxRequestSize == "" {
		c.MaxRequestSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("DOTFILE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("DOTFILE_API_MAX_REQUEST_SIZE"); v != "" {
		c.MaxRequestSize = v
	}
}
