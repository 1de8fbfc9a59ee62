package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linksleuth"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .linksleuth configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	// Timeout overrides the per-call network timeout, e.g. "8s".
	Timeout string `yaml:"timeout,omitempty"`

	// CacheTTL overrides how long cached assessments stay fresh, e.g. "30m".
	CacheTTL string `yaml:"cacheTTL,omitempty"`

	// SafeBrowsingAPIKey authenticates the reputation-list checker.
	SafeBrowsingAPIKey string `yaml:"safeBrowsingAPIKey,omitempty"`

	// ScanAPIKey authenticates the malware-scan checker.
	ScanAPIKey string `yaml:"scanAPIKey,omitempty"`

	// BlacklistFeeds replaces the default static blacklist feed URLs.
	BlacklistFeeds []string `yaml:"blacklistFeeds,omitempty"`

	// DBDir overrides the result cache directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Policy overrides individual scoring weights and thresholds.
	// Omitted entries keep the reference policy values.
	Policy *Policy `yaml:"policy,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply merges the file's overrides into the configuration.
// Empty fields in the file leave the corresponding Config fields untouched.
func (cf *File) Apply(c *Config) error {
	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	if cf.CacheTTL != "" {
		d, err := time.ParseDuration(cf.CacheTTL)
		if err != nil {
			return err
		}
		c.CacheTTL = d
	}
	if cf.SafeBrowsingAPIKey != "" {
		c.SafeBrowsingAPIKey = cf.SafeBrowsingAPIKey
	}
	if cf.ScanAPIKey != "" {
		c.ScanAPIKey = cf.ScanAPIKey
	}
	if len(cf.BlacklistFeeds) > 0 {
		c.BlacklistFeeds = append([]string(nil), cf.BlacklistFeeds...)
	}
	if cf.DBDir != "" {
		c.DBDir = cf.DBDir
	}
	if cf.Policy != nil {
		mergePolicy(&c.Policy, *cf.Policy)
	}
	return nil
}

// mergePolicy copies every non-zero override into the active policy.
// A zero weight in the file is indistinguishable from "unset", so disabling
// a finding entirely requires setting its weight to a negative value, which
// the scorer treats as zero.
func mergePolicy(dst *Policy, src Policy) {
	merge := func(dst *int, src int) {
		if src != 0 {
			*dst = src
		}
	}
	merge(&dst.ReputationDanger, src.ReputationDanger)
	merge(&dst.ScanDanger, src.ScanDanger)
	merge(&dst.BlacklistDanger, src.BlacklistDanger)
	merge(&dst.YoungDomain, src.YoungDomain)
	merge(&dst.NoHTTPS, src.NoHTTPS)
	merge(&dst.InvalidTLS, src.InvalidTLS)
	merge(&dst.MaskedDomain, src.MaskedDomain)
	merge(&dst.Punycode, src.Punycode)
	merge(&dst.ManyRedirects, src.ManyRedirects)
	merge(&dst.Tracking, src.Tracking)
	merge(&dst.ProxySuspect, src.ProxySuspect)
	merge(&dst.RedirectLimit, src.RedirectLimit)
	merge(&dst.HighThreshold, src.HighThreshold)
	merge(&dst.MediumThreshold, src.MediumThreshold)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linksleuth in the current directory
// 3. Look for .linksleuth in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
