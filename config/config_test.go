package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, []string{"legodeal"}, config.Subreddits)
	assert.Equal(t, 2*time.Second, config.PollInterval)
	assert.Equal(t, "", config.AffiliateTag)
	assert.Equal(t, []string{"i.redd.it", "preview.redd.it", "i.imgur.com"}, config.ImageHosts)
	assert.Equal(t, "", config.MemcacheAddr)

	// Test with environment variables
	os.Setenv("SUBREDDITS", "legodeal, buildapcsales")
	os.Setenv("POLL_INTERVAL_SECONDS", "30")
	os.Setenv("AMAZON_AFFILIATE_TAG", "mytag-20")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")

	config = LoadConfig()
	assert.Equal(t, []string{"legodeal", "buildapcsales"}, config.Subreddits)
	assert.Equal(t, 30*time.Second, config.PollInterval)
	assert.Equal(t, "mytag-20", config.AffiliateTag)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)

	// Clean up
	os.Unsetenv("SUBREDDITS")
	os.Unsetenv("POLL_INTERVAL_SECONDS")
	os.Unsetenv("AMAZON_AFFILIATE_TAG")
	os.Unsetenv("MEMCACHE_ADDR")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		WebhookURL:   "https://discord.com/api/webhooks/123/abc",
		Subreddits:   []string{"legodeal"},
		PollInterval: 2 * time.Second,
	}
	assert.NoError(t, cfg.Validate())

	missing := *cfg
	missing.WebhookURL = ""
	assert.Error(t, missing.Validate())

	badURL := *cfg
	badURL.WebhookURL = "https://example.com/hook"
	assert.Error(t, badURL.Validate())

	tooFast := *cfg
	tooFast.PollInterval = 500 * time.Millisecond
	assert.Error(t, tooFast.Validate())

	noSources := *cfg
	noSources.Subreddits = nil
	assert.Error(t, noSources.Validate())
}

func TestFeedURL(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "https://www.reddit.com/r/legodeal/new/.rss", cfg.FeedURL("legodeal"))
}
