package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DSN":     "postgres://localhost/membership",
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.PromotionRequireEligibility)
	assert.True(t, cfg.MigrationsEnabled)
	assert.False(t, cfg.TelegramAuditEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DSN":                        "postgres://db/membership",
		"JWT_SECRET":                    "secret",
		"JWT_ISSUER":                    "https://id.example.com",
		"ENV":                           "production",
		"HTTP_ADDR":                     ":9000",
		"LOG_LEVEL":                     "warn",
		"TELEGRAM_TOKEN":                "123:abc",
		"TELEGRAM_AUDIT_CHAT_ID":        "-100200300",
		"PROMOTION_REQUIRE_ELIGIBILITY": "true",
		"MIGRATIONS_ENABLED":            "false",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://id.example.com", cfg.JWTIssuer)
	assert.Equal(t, int64(-100200300), cfg.TelegramAuditChatID)
	assert.True(t, cfg.TelegramAuditEnabled())
	assert.True(t, cfg.PromotionRequireEligibility)
	assert.False(t, cfg.MigrationsEnabled)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing dsn", map[string]string{"JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"DB_DSN": "d"}},
		{"bad bool", map[string]string{"DB_DSN": "d", "JWT_SECRET": "s", "PROMOTION_REQUIRE_ELIGIBILITY": "maybe"}},
		{"bad chat id", map[string]string{"DB_DSN": "d", "JWT_SECRET": "s", "TELEGRAM_AUDIT_CHAT_ID": "chat"}},
		{"token without chat", map[string]string{"DB_DSN": "d", "JWT_SECRET": "s", "TELEGRAM_TOKEN": "123:abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.vars))
			assert.Error(t, err)
		})
	}
}
