package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileEnv names an optional YAML file layered under the environment.
const ConfigFileEnv = "CONSOLE_CONFIG"

// Config holds every setting of the console service. Keys are the lower-case
// environment variable names, e.g. TOURNAMENT_API_URL → tournament_api_url.
type Config struct {
	ServerPort  int    `koanf:"server_port"`
	LogLevel    string `koanf:"log_level"`
	DatabaseURL string `koanf:"database_url"`

	JWTSecretKey       string        `koanf:"jwt_secret_key"`
	TokenTTL           time.Duration `koanf:"token_ttl"`
	AdminUser          string        `koanf:"console_admin_user"`
	AdminPasswordHash  string        `koanf:"console_admin_password_hash"`
	SessionMaxIdle     time.Duration `koanf:"session_max_idle"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`

	TournamentAPIURL     string        `koanf:"tournament_api_url"`
	TournamentAPIToken   string        `koanf:"tournament_api_token"`
	TournamentAPITimeout time.Duration `koanf:"tournament_api_timeout"`
	TournamentAPIRetries int           `koanf:"tournament_api_retries"`
	TournamentAPIRPS     float64       `koanf:"tournament_api_rps"`

	R2AccountID       string `koanf:"r2_account_id"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2PublicBaseURL   string `koanf:"r2_public_base_url"`
}

// knownKeys lists every koanf key of Config; other variables in the
// environment are not loaded.
var knownKeys = func() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

// envKey maps an environment variable to its koanf key, or to "" so the
// provider skips it.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := knownKeys[key]; !ok {
		return ""
	}
	return key
}

func defaults() Config {
	return Config{
		ServerPort:           8080,
		LogLevel:             "info",
		TokenTTL:             12 * time.Hour,
		AdminUser:            "admin",
		SessionMaxIdle:       24 * time.Hour,
		CORSAllowedOrigins:   []string{"http://localhost:3000"},
		ShutdownTimeout:      15 * time.Second,
		TournamentAPITimeout: 10 * time.Second,
		TournamentAPIRetries: 2,
		TournamentAPIRPS:     20,
	}
}

// Load builds the configuration from, lowest precedence first: defaults, the
// YAML file named by CONSOLE_CONFIG, and the environment (after .env).
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is not set"))
	}
	if c.TournamentAPIURL == "" {
		errs = append(errs, errors.New("TOURNAMENT_API_URL is not set"))
	} else if u, err := url.Parse(c.TournamentAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("TOURNAMENT_API_URL %q is not an absolute URL", c.TournamentAPIURL))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.TournamentAPIRetries < 0 {
		errs = append(errs, fmt.Errorf("TOURNAMENT_API_RETRIES must not be negative, got %d", c.TournamentAPIRetries))
	}
	if c.TournamentAPITimeout <= 0 {
		errs = append(errs, fmt.Errorf("TOURNAMENT_API_TIMEOUT must be positive, got %s", c.TournamentAPITimeout))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// R2Configured reports whether exports can be uploaded.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
