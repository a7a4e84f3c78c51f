package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderConfig_HasCredentials(t *testing.T) {
	tests := []struct {
		name   string
		appID  string
		apiKey string
		want   bool
	}{
		{"both", "app", "key", true},
		{"no_app_id", "", "key", false},
		{"no_api_key", "app", "", false},
		{"blank", " ", "key", false},
		{"none", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProviderConfig{AppID: tt.appID, APIKey: tt.apiKey}
			assert.Equal(t, tt.want, p.HasCredentials())
		})
	}
}

func TestProviderConfig_ApplyLegacyEnv(t *testing.T) {
	env := map[string]string{
		"ONESIGNAL_APP_ID":       "legacy-app",
		"ONESIGNAL_REST_API_KEY": "legacy-key",
	}
	getenv := func(k string) string { return env[k] }

	p := ProviderConfig{}
	p.applyLegacyEnv(getenv)
	assert.Equal(t, "legacy-app", p.AppID)
	assert.Equal(t, "legacy-key", p.APIKey)

	p = ProviderConfig{AppID: "own-app", APIKey: "own-key"}
	p.applyLegacyEnv(getenv)
	assert.Equal(t, "own-app", p.AppID)
	assert.Equal(t, "own-key", p.APIKey)
}

func TestProviderConfig_LocaleList(t *testing.T) {
	p := ProviderConfig{Locales: " en, zh ,,"}
	assert.Equal(t, []string{"en", "zh"}, p.LocaleList())

	p = ProviderConfig{Locales: ""}
	assert.Empty(t, p.LocaleList())
}

func TestProviderConfig_MaskedAPIKey(t *testing.T) {
	assert.Equal(t, "", (&ProviderConfig{}).MaskedAPIKey())
	assert.Equal(t, "****", (&ProviderConfig{APIKey: "abc"}).MaskedAPIKey())
	assert.Equal(t, "****6789", (&ProviderConfig{APIKey: "123456789"}).MaskedAPIKey())
}

func TestHTTPConfig_GetConnectionString(t *testing.T) {
	c := HTTPConfig{Host: "localhost", Port: "9090"}
	assert.Equal(t, "localhost:9090", c.GetConnectionString())
}
