package docstore

import (
	"fmt"
	"time"

	"github.com/MGhunch/dot-file/pkg/envconf"
)

const (
	BackendGraph  = "graph"
	BackendAzure  = "azure"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config selects a backend and carries the settings for each.
type Config struct {
	Backend string      `toml:"backend"`
	Graph   GraphConfig `toml:"graph"`
	Azure   AzureConfig `toml:"azure"`
	S3      S3Config    `toml:"s3"`
}

// GraphConfig holds Microsoft Graph app-registration credentials and request
// behaviour. A negative MaxRetries disables retries.
type GraphConfig struct {
	TenantID         string `toml:"tenant_id"`
	ClientID         string `toml:"client_id"`
	ClientSecret     string `toml:"client_secret"`
	BaseURL          string `toml:"base_url"`
	Scope            string `toml:"scope"`
	MaxRetries       int    `toml:"max_retries"`
	RetryDelay       string `toml:"retry_delay"`
	CopyPollInterval string `toml:"copy_poll_interval"`
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *GraphConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// CopyPollIntervalDuration returns CopyPollInterval as a time.Duration.
func (c *GraphConfig) CopyPollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.CopyPollInterval)
	return d
}

// AzureConfig holds Azure Blob Storage connection parameters.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	ContainerName    string `toml:"container_name"`
}

// S3Config holds S3-compatible object store parameters.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Env names the environment variables that override Config.
type Env struct {
	Backend               string
	GraphTenantID         string
	GraphClientID         string
	GraphClientSecret     string
	GraphBaseURL          string
	GraphMaxRetries       string
	GraphRetryDelay       string
	GraphCopyPollInterval string
	AzureConnectionString string
	AzureContainerName    string
	S3Endpoint            string
	S3AccessKey           string
	S3SecretKey           string
	S3Bucket              string
	S3Region              string
	S3UseSSL              string
}

// Finalize applies defaults, then env overrides, then validates the selected backend.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}

	mergeString(&c.Graph.TenantID, overlay.Graph.TenantID)
	mergeString(&c.Graph.ClientID, overlay.Graph.ClientID)
	mergeString(&c.Graph.ClientSecret, overlay.Graph.ClientSecret)
	mergeString(&c.Graph.BaseURL, overlay.Graph.BaseURL)
	mergeString(&c.Graph.Scope, overlay.Graph.Scope)
	if overlay.Graph.MaxRetries != 0 {
		c.Graph.MaxRetries = overlay.Graph.MaxRetries
	}
	mergeString(&c.Graph.RetryDelay, overlay.Graph.RetryDelay)
	mergeString(&c.Graph.CopyPollInterval, overlay.Graph.CopyPollInterval)

	mergeString(&c.Azure.ConnectionString, overlay.Azure.ConnectionString)
	mergeString(&c.Azure.ContainerName, overlay.Azure.ContainerName)

	mergeString(&c.S3.Endpoint, overlay.S3.Endpoint)
	mergeString(&c.S3.AccessKey, overlay.S3.AccessKey)
	mergeString(&c.S3.SecretKey, overlay.S3.SecretKey)
	mergeString(&c.S3.Bucket, overlay.S3.Bucket)
	mergeString(&c.S3.Region, overlay.S3.Region)
	if overlay.S3.UseSSL {
		c.S3.UseSSL = true
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendGraph
	}
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = "https://graph.microsoft.com/v1.0"
	}
	if c.Graph.Scope == "" {
		c.Graph.Scope = "https://graph.microsoft.com/.default"
	}
	if c.Graph.MaxRetries == 0 {
		c.Graph.MaxRetries = 3
	}
	if c.Graph.RetryDelay == "" {
		c.Graph.RetryDelay = "800ms"
	}
	if c.Graph.CopyPollInterval == "" {
		c.Graph.CopyPollInterval = "1s"
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "jobs"
	}
	if c.S3.Bucket == "" {
		c.S3.Bucket = "jobs"
	}
}

func (c *Config) loadEnv(env *Env) {
	envconf.String(&c.Backend, env.Backend)
	envconf.String(&c.Graph.TenantID, env.GraphTenantID)
	envconf.String(&c.Graph.ClientID, env.GraphClientID)
	envconf.String(&c.Graph.ClientSecret, env.GraphClientSecret)
	envconf.String(&c.Graph.BaseURL, env.GraphBaseURL)
	envconf.Int(&c.Graph.MaxRetries, env.GraphMaxRetries)
	envconf.String(&c.Graph.RetryDelay, env.GraphRetryDelay)
	envconf.String(&c.Graph.CopyPollInterval, env.GraphCopyPollInterval)
	envconf.String(&c.Azure.ConnectionString, env.AzureConnectionString)
	envconf.String(&c.Azure.ContainerName, env.AzureContainerName)
	envconf.String(&c.S3.Endpoint, env.S3Endpoint)
	envconf.String(&c.S3.AccessKey, env.S3AccessKey)
	envconf.String(&c.S3.SecretKey, env.S3SecretKey)
	envconf.String(&c.S3.Bucket, env.S3Bucket)
	envconf.String(&c.S3.Region, env.S3Region)
	envconf.Bool(&c.S3.UseSSL, env.S3UseSSL)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendGraph:
		if c.Graph.TenantID == "" || c.Graph.ClientID == "" || c.Graph.ClientSecret == "" {
			return fmt.Errorf("graph backend requires tenant_id, client_id and client_secret")
		}
		if _, err := time.ParseDuration(c.Graph.RetryDelay); err != nil {
			return fmt.Errorf("invalid graph retry_delay: %w", err)
		}
		if d, err := time.ParseDuration(c.Graph.CopyPollInterval); err != nil || d <= 0 {
			return fmt.Errorf("invalid graph copy_poll_interval %q", c.Graph.CopyPollInterval)
		}
	case BackendAzure:
		if c.Azure.ConnectionString == "" {
			return fmt.Errorf("azure backend requires connection_string")
		}
	case BackendS3:
		if c.S3.Endpoint == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("s3 backend requires endpoint, access_key and secret_key")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown docstore backend %q", c.Backend)
	}
	return nil
}
