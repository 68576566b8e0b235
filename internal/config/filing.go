package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/filing"
	"github.com/MGhunch/dot-file/pkg/envconf"
)

const (
	EnvFilingInternalDomain        = "DOTFILE_FILING_INTERNAL_DOMAIN"
	EnvFilingDeliverableExtensions = "DOTFILE_FILING_DELIVERABLE_EXTENSIONS"
	EnvFilingIncomingSite          = "DOTFILE_FILING_INCOMING_SITE"
	EnvFilingIncomingPath          = "DOTFILE_FILING_INCOMING_PATH"
	EnvFilingDocumentRoot          = "DOTFILE_FILING_DOCUMENT_ROOT"
	EnvFilingTimezone              = "DOTFILE_FILING_TIMEZONE"
	EnvFilingLookupTimeout         = "DOTFILE_FILING_LOOKUP_TIMEOUT"
	EnvFilingDocstoreTimeout       = "DOTFILE_FILING_DOCSTORE_TIMEOUT"
	EnvFilingTrackingTimeout       = "DOTFILE_FILING_TRACKING_TIMEOUT"
	EnvFilingModelTimeout          = "DOTFILE_FILING_MODEL_TIMEOUT"
)

// FilingConfig holds classification policy, incoming folder location and
// per-stage timeouts.
type FilingConfig struct {
	InternalDomain        string   `toml:"internal_domain"`
	DeliverableExtensions []string `toml:"deliverable_extensions"`
	IncomingSite          string   `toml:"incoming_site"`
	IncomingPath          string   `toml:"incoming_path"`
	DocumentRoot          string   `toml:"document_root"`
	Timezone              string   `toml:"timezone"`
	LookupTimeout         string   `toml:"lookup_timeout"`
	DocstoreTimeout       string   `toml:"docstore_timeout"`
	TrackingTimeout       string   `toml:"tracking_timeout"`
	ModelTimeout          string   `toml:"model_timeout"`
}

// Policy returns the signal extraction policy.
func (c *FilingConfig) Policy() classification.Policy {
	return classification.Policy{
		InternalDomain:        c.InternalDomain,
		DeliverableExtensions: c.DeliverableExtensions,
	}
}

// ModelTimeoutDuration returns ModelTimeout as a time.Duration.
func (c *FilingConfig) ModelTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ModelTimeout)
	return d
}

// Settings converts the config into orchestrator settings. It must be
// called after Finalize.
func (c *FilingConfig) Settings() filing.Settings {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return filing.Settings{
		IncomingSite:    c.IncomingSite,
		IncomingPath:    c.IncomingPath,
		DocumentRoot:    c.DocumentRoot,
		Location:        loc,
		LookupTimeout:   duration(c.LookupTimeout),
		DocstoreTimeout: duration(c.DocstoreTimeout),
		TrackingTimeout: duration(c.TrackingTimeout),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *FilingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *FilingConfig) Merge(overlay *FilingConfig) {
	if overlay.InternalDomain != "" {
		c.InternalDomain = overlay.InternalDomain
	}
	if overlay.DeliverableExtensions != nil {
		c.DeliverableExtensions = overlay.DeliverableExtensions
	}
	if overlay.IncomingSite != "" {
		c.IncomingSite = overlay.IncomingSite
	}
	if overlay.IncomingPath != "" {
		c.IncomingPath = overlay.IncomingPath
	}
	if overlay.DocumentRoot != "" {
		c.DocumentRoot = overlay.DocumentRoot
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
	if overlay.LookupTimeout != "" {
		c.LookupTimeout = overlay.LookupTimeout
	}
	if overlay.DocstoreTimeout != "" {
		c.DocstoreTimeout = overlay.DocstoreTimeout
	}
	if overlay.TrackingTimeout != "" {
		c.TrackingTimeout = overlay.TrackingTimeout
	}
	if overlay.ModelTimeout != "" {
		c.ModelTimeout = overlay.ModelTimeout
	}
}

func (c *FilingConfig) loadDefaults() {
	defaults := classification.DefaultPolicy()
	if c.InternalDomain == "" {
		c.InternalDomain = defaults.InternalDomain
	}
	if c.DeliverableExtensions == nil {
		c.DeliverableExtensions = defaults.DeliverableExtensions
	}
	if c.IncomingSite == "" {
		c.IncomingSite = "hunch"
	}
	if c.IncomingPath == "" {
		c.IncomingPath = "Shared Documents/-- Incoming"
	}
	if c.DocumentRoot == "" {
		c.DocumentRoot = "Shared Documents"
	}
	if c.Timezone == "" {
		c.Timezone = "Pacific/Auckland"
	}
	if c.LookupTimeout == "" {
		c.LookupTimeout = "10s"
	}
	if c.DocstoreTimeout == "" {
		c.DocstoreTimeout = "30s"
	}
	if c.TrackingTimeout == "" {
		c.TrackingTimeout = "10s"
	}
	if c.ModelTimeout == "" {
		c.ModelTimeout = "30s"
	}
}

func (c *FilingConfig) loadEnv() {
	envconf.String(&c.InternalDomain, EnvFilingInternalDomain)
	envconf.List(&c.DeliverableExtensions, EnvFilingDeliverableExtensions)
	envconf.String(&c.IncomingSite, EnvFilingIncomingSite)
	envconf.String(&c.IncomingPath, EnvFilingIncomingPath)
	envconf.String(&c.DocumentRoot, EnvFilingDocumentRoot)
	envconf.String(&c.Timezone, EnvFilingTimezone)
	envconf.String(&c.LookupTimeout, EnvFilingLookupTimeout)
	envconf.String(&c.DocstoreTimeout, EnvFilingDocstoreTimeout)
	envconf.String(&c.TrackingTimeout, EnvFilingTrackingTimeout)
	envconf.String(&c.ModelTimeout, EnvFilingModelTimeout)
}

func (c *FilingConfig) validate() error {
	if strings.Contains(c.InternalDomain, "@") || c.InternalDomain == "" {
		return fmt.Errorf("invalid internal_domain %q", c.InternalDomain)
	}
	for i, ext := range c.DeliverableExtensions {
		if !strings.HasPrefix(ext, ".") {
			c.DeliverableExtensions[i] = "." + ext
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	timeouts := []struct {
		name, value string
	}{
		{"lookup_timeout", c.LookupTimeout},
		{"docstore_timeout", c.DocstoreTimeout},
		{"tracking_timeout", c.TrackingTimeout},
		{"model_timeout", c.ModelTimeout},
	}
	for _, t := range timeouts {
		d, err := time.ParseDuration(t.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", t.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", t.name)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
