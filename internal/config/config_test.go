package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Scraper.MaxImages)
	assert.Equal(t, 53, cfg.Scraper.OptionItemLimit)
	assert.Equal(t, 120*time.Second, cfg.Scraper.ChallengeTimeout)
	assert.Equal(t, 2*time.Second, cfg.Scraper.ChallengePoll)
	assert.Equal(t, "ko-KR", cfg.Browser.Locale)
	assert.Equal(t, "Asia/Seoul", cfg.Browser.TimezoneID)
	assert.True(t, cfg.Translation.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_MAX_IMAGES", "5")
	t.Setenv("SCRAPER_CHALLENGE_TIMEOUT", "30s")
	t.Setenv("TRANSLATION_ENABLED", "false")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.MaxImages)
	assert.Equal(t, 30*time.Second, cfg.Scraper.ChallengeTimeout)
	assert.False(t, cfg.Translation.Enabled)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SCRAPER_MAX_IMAGES", "not-a-number")
	t.Setenv("SCRAPER_REQUEST_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scraper.MaxImages)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RequestDelay)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.OptionItemLimit = 0
	assert.Error(t, cfg.Validate())

	cfg.Scraper.OptionItemLimit = 53
	cfg.Scraper.ChallengePoll = 0
	assert.Error(t, cfg.Validate())
}
