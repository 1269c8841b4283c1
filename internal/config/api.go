package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/JaimeStill/propensity/pkg/middleware"
	"github.com/JaimeStill/propensity/pkg/openapi"
	"github.com/JaimeStill/propensity/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PROPENSITY_CORS_ENABLED",
	Origins:          "PROPENSITY_CORS_ORIGINS",
	AllowedMethods:   "PROPENSITY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PROPENSITY_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PROPENSITY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PROPENSITY_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "PROPENSITY_AUTH_ENABLED",
	Issuer:   "PROPENSITY_AUTH_ISSUER",
	JWKSURL:  "PROPENSITY_AUTH_JWKS_URL",
	ClientID: "PROPENSITY_AUTH_CLIENT_ID",
}

var openapiEnv = &openapi.Env{
	Title:       "PROPENSITY_OPENAPI_TITLE",
	Description: "PROPENSITY_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "PROPENSITY_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PROPENSITY_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds JSON API routing, CORS, auth, and pagination settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Auth       middleware.AuthConfig `toml:"auth"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if v := os.Getenv("PROPENSITY_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Auth.Enabled && !slices.Contains(c.CORS.AllowedHeaders, "Authorization") {
		c.CORS.AllowedHeaders = append(c.CORS.AllowedHeaders, "Authorization")
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}
