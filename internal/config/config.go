// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by MergeWithDefaults when a field is unset.
const (
	DefaultIntervalSeconds   = 43200
	DefaultURLTimeoutSeconds = 120
	DefaultWorkers           = 1
	DefaultMaxEmails         = 50
)

// DefaultKeywords returns the link keywords used when none are configured.
func DefaultKeywords() []string {
	return []string{"job", "career", "recruiting", "hiring", "apply"}
}

// LoginCredentials holds one username/password pair for portal logins.
type LoginCredentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Empty reports whether no credentials are configured.
func (c LoginCredentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// Config represents the monitor configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, environment
// variables, or must be provided via CLI flags.
type Config struct {
	// Email
	IMAPAddr     string `json:"imap_addr,omitempty" validate:"required,hostname_port"`
	IMAPUsername string `json:"imap_username,omitempty" validate:"required"`
	IMAPPassword string `json:"imap_password,omitempty" validate:"required"`
	SMTPAddr     string `json:"smtp_addr,omitempty" validate:"required,hostname_port"`
	SMTPUsername string `json:"smtp_username,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	Sender       string `json:"sender,omitempty" validate:"required,email"`
	Recipient    string `json:"recipient,omitempty" validate:"required,email"`

	// Portal logins
	LinkedIn LoginCredentials `json:"linkedin,omitempty"`
	Generic  LoginCredentials `json:"generic_login,omitempty"`

	// Harvesting
	Keywords        []string `json:"keywords,omitempty"`
	HarvestStrategy string   `json:"harvest_strategy,omitempty" validate:"omitempty,oneof=static llm"`
	FilterEmails    bool     `json:"filter_emails,omitempty"` // LLM pre-filter of non-job emails
	MaxEmails       int      `json:"max_emails,omitempty" validate:"min=0"`

	// Behavior
	APIKey            string `json:"api_key,omitempty"`     // Gemini API key
	UseBrowser        bool   `json:"use_browser,omitempty"` // Use headless browser for SPA sites
	Verbose           bool   `json:"verbose,omitempty"`     // Print detailed debug information
	Workers           int    `json:"workers,omitempty" validate:"min=0,max=16"`
	IntervalSeconds   int    `json:"interval_seconds,omitempty" validate:"min=0"`
	URLTimeoutSeconds int    `json:"url_timeout_seconds,omitempty" validate:"min=0"`
	DatabaseURL       string `json:"database_url,omitempty"` // PostgreSQL connection URL, optional
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Run this after
// MergeWithDefaults and FillFromEnv so required fields had every chance to
// be populated.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.APIKey == "" {
		return fmt.Errorf("config error: api_key is required (flag, config file, or GEMINI_API_KEY)")
	}
	// A half-filled credential pair is a config mistake, not an optional login.
	if err := validateCredentialPair("linkedin", c.LinkedIn); err != nil {
		return err
	}
	if err := validateCredentialPair("generic_login", c.Generic); err != nil {
		return err
	}
	return nil
}

func validateCredentialPair(name string, creds LoginCredentials) error {
	if creds.Empty() {
		return nil
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("config error: %s requires both username and password", name)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled in.
func (c *Config) MergeWithDefaults() Config {
	result := *c

	if len(result.Keywords) == 0 {
		result.Keywords = DefaultKeywords()
	}
	if result.HarvestStrategy == "" {
		result.HarvestStrategy = "static"
	}
	if result.IntervalSeconds == 0 {
		result.IntervalSeconds = DefaultIntervalSeconds
	}
	if result.URLTimeoutSeconds == 0 {
		result.URLTimeoutSeconds = DefaultURLTimeoutSeconds
	}
	if result.Workers == 0 {
		result.Workers = DefaultWorkers
	}
	if result.MaxEmails == 0 {
		result.MaxEmails = DefaultMaxEmails
	}
	if result.SMTPUsername == "" {
		result.SMTPUsername = result.IMAPUsername
	}
	if result.SMTPPassword == "" {
		result.SMTPPassword = result.IMAPPassword
	}
	if result.Sender == "" {
		result.Sender = result.IMAPUsername
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
