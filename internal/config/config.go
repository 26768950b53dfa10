package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Exchange ExchangeConfig
	Security SecurityConfig
	Bot      BotConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера (API, метрики, WebSocket)
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// ExchangeConfig - доступ к Bitunix OpenAPI.
// SecretKey задаётся либо открыто (BITUNIX_SECRET_KEY), либо шифртекстом
// (BITUNIX_SECRET_KEY_ENC, base64 AES-256-GCM) с расшифровкой через
// Security.EncryptionKey при старте.
type ExchangeConfig struct {
	BaseURL            string
	APIKey             string
	SecretKey          string
	EncryptedSecretKey string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// bcrypt хеш bearer-токена HTTP API; пустое значение отключает
	// авторизацию (допустимо только в интерактивном режиме)
	APITokenHash string
	// 32 байта для AES-256 (расшифровка секретного ключа биржи)
	EncryptionKey string
}

// BotConfig - настройки движка сопровождения позиции
type BotConfig struct {
	PollInterval  time.Duration // пауза между тиками опроса
	RecoveryDelay time.Duration // удлинённая пауза после ошибки тика
	Interactive   bool          // ввод параметров через терминал вместо HTTP API
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Exchange: ExchangeConfig{
			BaseURL:            getEnv("BITUNIX_BASE_URL", "https://api.bitunix.com"),
			APIKey:             getEnv("BITUNIX_API_KEY", ""),
			SecretKey:          getEnv("BITUNIX_SECRET_KEY", ""),
			EncryptedSecretKey: getEnv("BITUNIX_SECRET_KEY_ENC", ""),
		},
		Security: SecurityConfig{
			APITokenHash:  getEnv("API_TOKEN_HASH", ""),
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Bot: BotConfig{
			PollInterval:  getEnvAsDuration("POLL_INTERVAL", 1*time.Second),
			RecoveryDelay: getEnvAsDuration("RECOVERY_DELAY", 10*time.Second),
			Interactive:   getEnvAsBool("INTERACTIVE", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSecurity проверяет параметры доступа и безопасности
func (c *Config) validateSecurity() error {
	if c.Exchange.APIKey == "" {
		return fmt.Errorf("BITUNIX_API_KEY is required")
	}

	if c.Exchange.SecretKey == "" && c.Exchange.EncryptedSecretKey == "" {
		return fmt.Errorf("either BITUNIX_SECRET_KEY or BITUNIX_SECRET_KEY_ENC is required")
	}

	if c.Exchange.SecretKey != "" && c.Exchange.EncryptedSecretKey != "" {
		return fmt.Errorf("BITUNIX_SECRET_KEY and BITUNIX_SECRET_KEY_ENC are mutually exclusive")
	}

	// Шифртекст бесполезен без ключа расшифровки
	if c.Exchange.EncryptedSecretKey != "" && c.Security.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required when BITUNIX_SECRET_KEY_ENC is set")
	}

	if c.Security.EncryptionKey != "" && len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	// Открытый HTTP API без авторизации допустим только когда
	// управление идёт через терминал
	if !c.Bot.Interactive && c.Security.APITokenHash == "" {
		return fmt.Errorf("API_TOKEN_HASH is required when INTERACTIVE is disabled")
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Bot.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.Bot.PollInterval)
	}

	if c.Bot.RecoveryDelay <= 0 {
		return fmt.Errorf("RECOVERY_DELAY must be positive, got %v", c.Bot.RecoveryDelay)
	}

	if c.Bot.RecoveryDelay < c.Bot.PollInterval {
		return fmt.Errorf("RECOVERY_DELAY must not be shorter than POLL_INTERVAL (%v < %v)",
			c.Bot.RecoveryDelay, c.Bot.PollInterval)
	}

	if c.Server.UseHTTPS && (c.Server.CertFile == "" || c.Server.KeyFile == "") {
		return fmt.Errorf("CERT_FILE and KEY_FILE are required when USE_HTTPS is enabled")
	}

	return nil
}

// Addr возвращает адрес прослушивания HTTP сервера
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
