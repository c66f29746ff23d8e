package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		IMAPAddr:     "imap.example.com:993",
		IMAPUsername: "me@example.com",
		IMAPPassword: "app-password",
		SMTPAddr:     "smtp.example.com:587",
		Sender:       "me@example.com",
		Recipient:    "me@example.com",
		APIKey:       "key",
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"imap_addr": "imap.example.com:993",
		"imap_username": "me@example.com",
		"keywords": ["internship"],
		"interval_seconds": 3600,
		"linkedin": {"username": "li-user", "password": "li-pass"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "imap.example.com:993", cfg.IMAPAddr)
	assert.Equal(t, []string{"internship"}, cfg.Keywords)
	assert.Equal(t, 3600, cfg.IntervalSeconds)
	assert.Equal(t, "li-user", cfg.LinkedIn.Username)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfigFile(t, "{not json")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := validConfig()
	merged := cfg.MergeWithDefaults()

	assert.Equal(t, DefaultKeywords(), merged.Keywords)
	assert.Equal(t, DefaultIntervalSeconds, merged.IntervalSeconds)
	assert.Equal(t, DefaultURLTimeoutSeconds, merged.URLTimeoutSeconds)
	assert.Equal(t, DefaultWorkers, merged.Workers)
	// SMTP credentials fall back to the IMAP account.
	assert.Equal(t, cfg.IMAPUsername, merged.SMTPUsername)
	assert.Equal(t, cfg.IMAPPassword, merged.SMTPPassword)
}

func TestMergeKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Keywords = []string{"internship"}
	cfg.IntervalSeconds = 60
	cfg.SMTPUsername = "other@example.com"

	merged := cfg.MergeWithDefaults()
	assert.Equal(t, []string{"internship"}, merged.Keywords)
	assert.Equal(t, 60, merged.IntervalSeconds)
	assert.Equal(t, "other@example.com", merged.SMTPUsername)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateMissingRequired(t *testing.T) {
	cfg := validConfig()
	cfg.IMAPAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Recipient = "not-an-email"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.APIKey = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateHalfFilledCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.LinkedIn = LoginCredentials{Username: "user-only"}
	assert.Error(t, cfg.Validate())

	cfg.LinkedIn = LoginCredentials{Username: "user", Password: "pass"}
	assert.NoError(t, cfg.Validate())
}

func TestFillFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvLinkedInUsername, "env-li")

	cfg := &Config{APIKey: "explicit"}
	cfg.FillFromEnv()

	// Explicit value wins over environment.
	assert.Equal(t, "explicit", cfg.APIKey)
	assert.Equal(t, "env-li", cfg.LinkedIn.Username)
}
