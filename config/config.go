package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const webhookPrefix = "https://discord.com/api/webhooks/"

// Config represents the application configuration
type Config struct {
	// Webhook configuration
	WebhookURL  string
	RoleMention string

	// Feed configuration
	Subreddits   []string
	PollInterval time.Duration
	AffiliateTag string

	// Image classification sets
	ImageHosts  []string
	ImageExts   []string
	SelfDomains []string

	// Memcache configuration (optional; empty disables the block cache)
	MemcacheAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	pollInterval, _ := strconv.Atoi(getEnv("POLL_INTERVAL_SECONDS", "2"))

	return &Config{
		WebhookURL:   getEnv("DISCORD_WEBHOOK_URL", ""),
		RoleMention:  getEnv("ROLE_MENTION", ""),
		Subreddits:   splitList(getEnv("SUBREDDITS", "legodeal")),
		PollInterval: time.Duration(pollInterval) * time.Second,
		AffiliateTag: getEnv("AMAZON_AFFILIATE_TAG", ""),
		ImageHosts:   splitList(getEnv("IMAGE_HOSTS", "i.redd.it,preview.redd.it,i.imgur.com")),
		ImageExts:    splitList(getEnv("IMAGE_EXTS", ".jpg,.jpeg,.png,.gif,.webp,.bmp,.svg")),
		SelfDomains:  splitList(getEnv("SELF_DOMAINS", "reddit.com")),
		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		Environment:  getEnv("DEALSNIPER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return fmt.Errorf("DISCORD_WEBHOOK_URL is required")
	}
	if !strings.HasPrefix(c.WebhookURL, webhookPrefix) {
		return fmt.Errorf("DISCORD_WEBHOOK_URL appears to be invalid; it should start with %q", webhookPrefix)
	}
	if len(c.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit is required")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be at least 1 second")
	}
	return nil
}

// FeedURL returns the RSS feed URL for a subreddit
func (c *Config) FeedURL(subreddit string) string {
	return fmt.Sprintf("https://www.reddit.com/r/%s/new/.rss", subreddit)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated value, trimming blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
