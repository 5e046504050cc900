package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Init()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Planner.MinSlotHours)
	assert.Equal(t, 3, cfg.Planner.IdeaCount)
	assert.Equal(t, 5, cfg.Planner.VenuesPerIdea)
	assert.Equal(t, 3, cfg.Planner.EventCount)
	assert.Equal(t, 5, cfg.Planner.PromptSlotCount)
	assert.Equal(t, 10, cfg.Planner.ResponseSlotCount)
	assert.Equal(t, 20*time.Second, cfg.Planner.ExternalCallTimeout)
	assert.False(t, cfg.Providers.UseRealLLM)
	assert.False(t, cfg.Providers.UseRealCalendar)

	got, ok := GetSafe()
	require.True(t, ok)
	assert.Same(t, cfg, got)
}

func TestInitProviderFlags(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("USE_REAL_WEATHER", "true")
	t.Setenv("OPENWEATHER_API_KEY", "weather-key")
	t.Setenv("PLANNER_MIN_SLOT_HOURS", "1.5")

	cfg, err := Init()
	require.NoError(t, err)
	assert.True(t, cfg.Providers.UseRealWeather)
	assert.Equal(t, "weather-key", cfg.Weather.APIKey)
	assert.Equal(t, 1.5, cfg.Planner.MinSlotHours)
}

func TestValidateRejectsRealProviderWithoutKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("USE_REAL_LLM", "true")
	t.Setenv("LLM_API_KEY", "")

	_, err := Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Init()
	require.Error(t, err)
}
