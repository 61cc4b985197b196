package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort      string        `yaml:"server_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	RequestDelayMS     int           `yaml:"request_delay_ms"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	AcceptLanguage     string        `yaml:"accept_language"`
	PreserveFormatting bool          `yaml:"preserve_formatting"`
	DefaultLanguages   []string      `yaml:"default_languages"`

	RateLimit         int           `yaml:"rate_limit"`
	RateLimitInterval time.Duration `yaml:"rate_limit_interval"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`

	CacheEnabled bool          `yaml:"cache_enabled"`
	DBPath       string        `yaml:"db_path"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`

	LogDir    string `yaml:"log_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Spaces SpacesConfig `yaml:"spaces"`
}

// SpacesConfig configures the optional S3-compatible transcript archive.
type SpacesConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	PathStyle bool   `yaml:"path_style"`
}

func LoadConfig() *Config {
	return &Config{
		ServerPort:      GetEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 45*time.Second),

		RequestDelayMS:     getEnvAsInt("REQUEST_DELAY_MS", 500),
		HTTPTimeout:        getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		AcceptLanguage:     GetEnv("ACCEPT_LANGUAGE", "en-US"),
		PreserveFormatting: getEnvAsBool("PRESERVE_FORMATTING", false),
		DefaultLanguages:   getEnvAsList("DEFAULT_LANGUAGES", []string{"en"}),

		RateLimit:         getEnvAsInt("RATE_LIMIT", 5),
		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 1*time.Second),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 5),

		CacheEnabled: getEnvAsBool("CACHE_ENABLED", true),
		DBPath:       GetEnv("DB_PATH", "./data/transcripts.db"),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 24*time.Hour),

		LogDir:    GetEnv("LOG_DIR", "./logs"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "text"),

		Spaces: SpacesConfig{
			Enabled:   getEnvAsBool("SPACES_ENABLED", false),
			AccessKey: GetEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: GetEnv("SPACES_SECRET_KEY", ""),
			Region:    GetEnv("SPACES_REGION", "us-east-1"),
			Endpoint:  GetEnv("SPACES_ENDPOINT", ""),
			Bucket:    GetEnv("SPACES_BUCKET", ""),
			PathStyle: getEnvAsBool("SPACES_PATH_STYLE", false),
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

// RequestDelay is the pause taken before every outbound YouTube request.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	list := SplitList(value)
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.RequestDelayMS < 0 {
		return errors.New("request delay must not be negative")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitInterval <= 0 {
		return errors.New("rate limit and interval must be greater than 0")
	}
	if len(cfg.DefaultLanguages) == 0 {
		return errors.New("at least one default language is required")
	}
	if cfg.CacheEnabled && cfg.DBPath == "" {
		return errors.New("database path is required when the cache is enabled")
	}
	if cfg.Spaces.Enabled && (cfg.Spaces.Bucket == "" || cfg.Spaces.Endpoint == "") {
		return errors.New("spaces bucket and endpoint are required when the archive is enabled")
	}
	return nil
}
