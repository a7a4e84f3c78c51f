package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/wb-go/wbf/config"
)

// Config основная конфигурация приложения.
type Config struct {
	// HTTP сервер
	HTTP HTTPConfig `config:"http"`

	// Push-провайдер
	Provider ProviderConfig `config:"provider"`

	// Логирование
	Logging LoggingConfig `config:"logging"`
}

// HTTPConfig конфигурация HTTP сервера.
type HTTPConfig struct {
	Host string `config:"host" default:"0.0.0.0"`
	Port string `config:"port" default:"8080"`
}

// ProviderConfig конфигурация OneSignal.
type ProviderConfig struct {
	AppID      string        `config:"app_id"`
	APIKey     string        `config:"api_key"`
	BaseURL    string        `config:"base_url" default:"https://onesignal.com/api/v1"`
	AuthScheme string        `config:"auth_scheme" default:"Basic"`
	Addressing string        `config:"addressing" default:"external_user_id"`
	Locales    string        `config:"locales" default:"en,zh"`
	Timeout    time.Duration `config:"timeout" default:"10s"`
	Policy     string        `config:"policy" default:"conditional"`
}

// LoggingConfig конфигурация логирования.
type LoggingConfig struct {
	Level string `config:"level" default:"info"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	wbfCfg := config.New()
	if err := wbfCfg.LoadEnvFiles(".env"); err != nil {
		log.Printf("failed to load env vars: %v", err)
	}
	// Включаем переменные окружения с префиксом
	wbfCfg.EnableEnv("PUSH_RELAY")

	// run server config
	wbfCfg.SetDefault("http.host", "0.0.0.0")
	wbfCfg.SetDefault("http.port", "8080")
	// push provider config
	wbfCfg.SetDefault("provider.app_id", "")
	wbfCfg.SetDefault("provider.api_key", "")
	wbfCfg.SetDefault("provider.base_url", "https://onesignal.com/api/v1")
	wbfCfg.SetDefault("provider.auth_scheme", "Basic")
	wbfCfg.SetDefault("provider.addressing", "external_user_id")
	wbfCfg.SetDefault("provider.locales", "en,zh")
	wbfCfg.SetDefault("provider.timeout", "10s")
	wbfCfg.SetDefault("provider.policy", "conditional")
	// other config
	wbfCfg.SetDefault("logging.level", "info")

	// Парсим флаги
	if err := wbfCfg.ParseFlags(); err != nil {
		return nil, err
	}

	appConfig := &Config{}
	if err := wbfCfg.Unmarshal(appConfig); err != nil {
		return nil, err
	}
	appConfig.Provider.applyLegacyEnv(os.Getenv)
	return appConfig, nil
}

// applyLegacyEnv подставляет ONESIGNAL_* переменные, если префиксные не заданы.
func (p *ProviderConfig) applyLegacyEnv(getenv func(string) string) {
	if p.AppID == "" {
		p.AppID = getenv("ONESIGNAL_APP_ID")
	}
	if p.APIKey == "" {
		p.APIKey = getenv("ONESIGNAL_REST_API_KEY")
	}
}

// GetConnectionString формирует строку подключения для HTTP.
func (c *HTTPConfig) GetConnectionString() string {
	return c.Host + ":" + c.Port
}

// HasCredentials сообщает, заданы ли одновременно app id и api key.
func (p *ProviderConfig) HasCredentials() bool {
	return strings.TrimSpace(p.AppID) != "" && strings.TrimSpace(p.APIKey) != ""
}

// LocaleList возвращает список локалей без пустых элементов.
func (p *ProviderConfig) LocaleList() []string {
	var locales []string
	for _, l := range strings.Split(p.Locales, ",") {
		if l = strings.TrimSpace(l); l != "" {
			locales = append(locales, l)
		}
	}
	return locales
}

// MaskedAPIKey возвращает ключ, пригодный для вывода в лог.
func (p *ProviderConfig) MaskedAPIKey() string {
	if len(p.APIKey) <= 4 {
		if p.APIKey == "" {
			return ""
		}
		return "****"
	}
	return "****" + p.APIKey[len(p.APIKey)-4:]
}
