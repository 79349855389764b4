// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ModelModeGateway = "gateway"
	ModelModeOpenAI  = "openai"
)

type Config struct {
	HTTP     HTTPConfig
	DB       DBConfig
	Model    ModelConfig
	Auth     AuthConfig
	Log      LogConfig
	Advice   AdviceConfig
	Shutdown time.Duration
}

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

type DBConfig struct {
	Driver string
	DSN    string
}

type ModelConfig struct {
	Mode    string
	BaseURL string
	APIKey  string
	Name    string
	Timeout time.Duration
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	Required bool
}

type LogConfig struct {
	Mode string
	File string
}

type AdviceConfig struct {
	Language string
}

// Load reads the given .env files (default ".env") if they exist and then the
// process environment. Values already present in the environment win.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:        str("HTTP_HOST", "0.0.0.0"),
			Port:        integer("HTTP_PORT", 8011),
			CORSOrigins: list("CORS_ORIGINS", []string{"*"}),
		},
		DB: DBConfig{
			Driver: strings.ToLower(str("DB_DRIVER", DriverSQLite)),
			DSN:    str("DB_DSN", "nutrilog.db"),
		},
		Model: ModelConfig{
			Mode:    strings.ToLower(str("MODEL_MODE", ModelModeGateway)),
			APIKey:  str("MODEL_API_KEY", ""),
			Name:    str("MODEL_NAME", "anthropic/claude-3.5-sonnet"),
			Timeout: seconds("MODEL_TIMEOUT_SECONDS", 60),
		},
		Auth: AuthConfig{
			Secret:   str("JWT_SECRET", "change-me"),
			TokenTTL: seconds("JWT_TTL_SECONDS", 86400),
			Required: boolean("AUTH_REQUIRED", false),
		},
		Log: LogConfig{
			Mode: str("LOG_MODE", "dev"),
			File: str("LOG_FILE", ""),
		},
		Advice: AdviceConfig{
			Language: str("ADVICE_LANGUAGE", "Korean"),
		},
		Shutdown: seconds("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}

	defaultURL := "http://mcp-compose-http-proxy:9876"
	if cfg.Model.Mode == ModelModeOpenAI {
		defaultURL = "https://api.openai.com"
	}
	cfg.Model.BaseURL = strings.TrimRight(str("MODEL_BASE_URL", defaultURL), "/")

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	switch c.Model.Mode {
	case ModelModeGateway, ModelModeOpenAI:
	default:
		return fmt.Errorf("unsupported MODEL_MODE %q", c.Model.Mode)
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT_SECONDS must be positive")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func seconds(name string, def int) time.Duration {
	return time.Duration(integer(name, def)) * time.Second
}

func boolean(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func list(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
