package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Model fusion configuration.
	PrimaryModel       domain.ModelID
	ComparisonModels   []domain.ModelID
	LocalModelSource   string
	ReliabilityVariant domain.ReliabilityVariant

	// Text-generation proxy configuration.
	AIEnabled       bool
	AIAPIKey        string
	AIBaseURL       string
	AIModel         string
	AITimeout       time.Duration
	AIRatePerMinute int
	AICacheTTL      time.Duration

	CacheMaxAge        time.Duration
	CacheSweepInterval time.Duration
	CacheMaxEntries    int
	EnhanceDebounce    time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	variant, err := domain.ParseReliabilityVariant(os.Getenv("RELIABILITY_VARIANT"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELIABILITY_VARIANT: %w", err)
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "weather-fusion-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "weather-fusion-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "weather-fusion"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		PrimaryModel:       domain.ModelID(sharedcfg.EnvOrDefault("PRIMARY_MODEL", string(domain.DefaultModelSet().Primary))),
		ComparisonModels:   parseModels(os.Getenv("COMPARISON_MODELS")),
		LocalModelSource:   sharedcfg.EnvOrDefault("LOCAL_MODEL_SOURCE", domain.DefaultLocalSource),
		ReliabilityVariant: variant,

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AIModel:   sharedcfg.EnvOrDefault("AI_MODEL", "gpt-4o-mini"),
	}

	for _, d := range []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"AI_TIMEOUT", "10s", &cfg.AITimeout},
		{"AI_CACHE_TTL", "6h", &cfg.AICacheTTL},
		{"CACHE_MAX_AGE", "24h", &cfg.CacheMaxAge},
		{"CACHE_SWEEP_INTERVAL", "1h", &cfg.CacheSweepInterval},
		{"ENHANCE_DEBOUNCE", "500ms", &cfg.EnhanceDebounce},
	} {
		if *d.dst, err = parsePositiveDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.AIRatePerMinute, err = parseNonNegativeInt("AI_RATE_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.CacheMaxEntries, err = parseNonNegativeInt("CACHE_MAX_ENTRIES", 10000); err != nil {
		return nil, err
	}

	if cfg.ComparisonModels == nil {
		cfg.ComparisonModels = domain.DefaultModelSet().Secondary
	}

	cfg.AIEnabled = cfg.AIAPIKey != ""
	if v := os.Getenv("AI_ENABLED"); v != "" {
		cfg.AIEnabled = v == "true"
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.PrimaryModel == "" {
		return nil, errors.New("PRIMARY_MODEL is required")
	}
	if cfg.AIEnabled && cfg.AIAPIKey == "" {
		return nil, errors.New("AI_ENABLED is true but AI_API_KEY is not set")
	}
	if cfg.AICacheTTL > cfg.CacheMaxAge {
		return nil, errors.New("AI_CACHE_TTL must not exceed CACHE_MAX_AGE")
	}

	return cfg, nil
}

// FusionOptions returns the fuser configuration described by cfg.
func (c *Config) FusionOptions() domain.FusionOptions {
	opts := domain.DefaultFusionOptions()
	opts.Models.Primary = c.PrimaryModel
	opts.Models.Secondary = c.ComparisonModels
	opts.LocalSource = c.LocalModelSource
	opts.Variant = c.ReliabilityVariant
	return opts
}

// parseModels splits a comma-separated model list. Returns nil when unset so
// the caller can apply the default set; "none" disables comparison.
func parseModels(s string) []domain.ModelID {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	models := []domain.ModelID{}
	if strings.TrimSpace(s) == "none" {
		return models
	}
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, domain.ModelID(m))
		}
	}
	return models
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
