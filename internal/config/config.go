package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/makeup-recommender/internal/tone"
)

const envPrefix = "MAKEUP"

// Analyzer backends.
const (
	BackendGRPC   = "grpc"
	BackendOpenAI = "openai"
)

// HTTPConfig controls the listener and shutdown drain.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig sets the zap log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AnalyzerConfig selects the face analysis backend and its gRPC endpoint.
type AnalyzerConfig struct {
	Backend string        `mapstructure:"backend"`
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig configures the OpenAI vision backend.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ToneConfig holds the skin tone bucket cutoffs.
type ToneConfig struct {
	FairThreshold   float64 `mapstructure:"fair_threshold"`
	MediumThreshold float64 `mapstructure:"medium_threshold"`
}

// Thresholds converts the configured cutoffs.
func (t ToneConfig) Thresholds() tone.Thresholds {
	return tone.Thresholds{Fair: t.FairThreshold, Medium: t.MediumThreshold}
}

// RedisConfig points at the result cache.
type RedisConfig struct {
	Addr string `mapstructure:"addr"` // empty keeps results in process memory
}

// DatabaseConfig points at the PostgreSQL analysis history.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // empty keeps analysis history in process memory
}

// JWTConfig verifies admin API tokens.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"` // empty disables the admin API
	Audience string `mapstructure:"audience"`
}

// Config is the resolved service configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Tone     ToneConfig     `mapstructure:"tone"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("analyzer.backend", BackendGRPC)
	v.SetDefault("analyzer.addr", "face-analyzer:50051")
	v.SetDefault("analyzer.timeout", 30*time.Second)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("tone.fair_threshold", tone.DefaultFairThreshold)
	v.SetDefault("tone.medium_threshold", tone.DefaultMediumThreshold)
	v.SetDefault("redis.addr", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.audience", "")
}

// RegisterFlags adds the command line flags understood by Load.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a YAML config file")
	flags.String("http.addr", ":8080", "HTTP listen address")
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.String("analyzer.backend", BackendGRPC, "face analyzer backend (grpc, openai)")
	flags.String("analyzer.addr", "face-analyzer:50051", "gRPC face analyzer address")
}

// Load resolves configuration from defaults, an optional config file,
// MAKEUP_* environment variables and flags, in increasing precedence.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Analyzer.Backend {
	case BackendGRPC:
		if c.Analyzer.Addr == "" {
			errs = append(errs, errors.New("analyzer.addr is required for the grpc backend"))
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("openai.api_key is required for the openai backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown analyzer.backend %q", c.Analyzer.Backend))
	}
	if err := c.Tone.Thresholds().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	return errors.Join(errs...)
}
