package config

import "os"

// Environment variables recognized as fallbacks for config fields.
// Values already set in the config win over the environment.
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvIMAPAddr     = "JOBSCOUT_IMAP_ADDR"
	EnvIMAPUsername = "JOBSCOUT_IMAP_USERNAME"
	EnvIMAPPassword = "JOBSCOUT_IMAP_PASSWORD"
	EnvSMTPAddr     = "JOBSCOUT_SMTP_ADDR"
	EnvRecipient    = "JOBSCOUT_RECIPIENT"
	EnvDatabaseURL  = "DATABASE_URL"

	EnvLinkedInUsername = "JOBSCOUT_LINKEDIN_USERNAME"
	EnvLinkedInPassword = "JOBSCOUT_LINKEDIN_PASSWORD"
	EnvLoginUsername    = "JOBSCOUT_LOGIN_USERNAME"
	EnvLoginPassword    = "JOBSCOUT_LOGIN_PASSWORD"
)

// FillFromEnv populates unset fields from the environment. Secrets usually
// arrive this way, via .env loaded at startup.
func (c *Config) FillFromEnv() {
	fill(&c.APIKey, EnvAPIKey)
	fill(&c.IMAPAddr, EnvIMAPAddr)
	fill(&c.IMAPUsername, EnvIMAPUsername)
	fill(&c.IMAPPassword, EnvIMAPPassword)
	fill(&c.SMTPAddr, EnvSMTPAddr)
	fill(&c.Recipient, EnvRecipient)
	fill(&c.DatabaseURL, EnvDatabaseURL)

	fill(&c.LinkedIn.Username, EnvLinkedInUsername)
	fill(&c.LinkedIn.Password, EnvLinkedInPassword)
	fill(&c.Generic.Username, EnvLoginUsername)
	fill(&c.Generic.Password, EnvLoginPassword)
}

func fill(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
