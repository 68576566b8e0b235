package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/MGhunch/dot-file/pkg/database"
	"github.com/MGhunch/dot-file/pkg/docstore"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDotfileEnv             = "DOTFILE_ENV"
	EnvDotfileShutdownTimeout = "DOTFILE_SHUTDOWN_TIMEOUT"
	EnvDotfileVersion         = "DOTFILE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "DOTFILE_DB_HOST",
	Port:            "DOTFILE_DB_PORT",
	Name:            "DOTFILE_DB_NAME",
	User:            "DOTFILE_DB_USER",
	Password:        "DOTFILE_DB_PASSWORD",
	SSLMode:         "DOTFILE_DB_SSL_MODE",
	MaxOpenConns:    "DOTFILE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DOTFILE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DOTFILE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DOTFILE_DB_CONN_TIMEOUT",
}

var docstoreEnv = &docstore.Env{
	Backend:               "DOTFILE_DOCSTORE_BACKEND",
	GraphTenantID:         "DOTFILE_GRAPH_TENANT_ID",
	GraphClientID:         "DOTFILE_GRAPH_CLIENT_ID",
	GraphClientSecret:     "DOTFILE_GRAPH_CLIENT_SECRET",
	GraphBaseURL:          "DOTFILE_GRAPH_BASE_URL",
	GraphMaxRetries:       "DOTFILE_GRAPH_MAX_RETRIES",
	GraphRetryDelay:       "DOTFILE_GRAPH_RETRY_DELAY",
	GraphCopyPollInterval: "DOTFILE_GRAPH_COPY_POLL_INTERVAL",
	AzureConnectionString: "DOTFILE_AZURE_CONNECTION_STRING",
	AzureContainerName:    "DOTFILE_AZURE_CONTAINER_NAME",
	S3Endpoint:            "DOTFILE_S3_ENDPOINT",
	S3AccessKey:           "DOTFILE_S3_ACCESS_KEY",
	S3SecretKey:           "DOTFILE_S3_SECRET_KEY",
	S3Bucket:              "DOTFILE_S3_BUCKET",
	S3Region:              "DOTFILE_S3_REGION",
	S3UseSSL:              "DOTFILE_S3_USE_SSL",
}

// Config is the root configuration for the filing service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Docstore        docstore.Config      `toml:"docstore"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	API             APIConfig            `toml:"api"`
	Filing          FilingConfig         `toml:"filing"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the DOTFILE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDotfileEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Docstore.Merge(&overlay.Docstore)
	c.Agent.Merge(&overlay.Agent)
	c.API.Merge(&overlay.API)
	c.Filing.Merge(&overlay.Filing)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Docstore.Finalize(docstoreEnv); err != nil {
		return fmt.Errorf("docstore: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Filing.Finalize(); err != nil {
		return fmt.Errorf("filing: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDotfileShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDotfileVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDotfileEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
