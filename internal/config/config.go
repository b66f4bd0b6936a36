package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	ASR       ASRConfig       `yaml:"asr" mapstructure:"asr"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds inference API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// OCRConfig configures image text extraction.
type OCRConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	MaxConcurrency int    `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// ASRConfig configures audio transcription.
type ASRConfig struct {
	Key             string   `yaml:"key" mapstructure:"key"`
	BaseURL         string   `yaml:"base_url" mapstructure:"base_url"`
	Model           string   `yaml:"model" mapstructure:"model"`
	MaxConcurrency  int      `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	VocabularyTerms []string `yaml:"vocabulary_terms" mapstructure:"vocabulary_terms"`
}

// PipelineConfig configures extraction behavior.
type PipelineConfig struct {
	// MaxInferenceAttempts is the total attempt count per inference
	// call site (1 initial + retries).
	MaxInferenceAttempts int `yaml:"max_inference_attempts" mapstructure:"max_inference_attempts"`
	// FuzzyMatchThreshold is the minimum name similarity for a roster
	// match during party resolution.
	FuzzyMatchThreshold float64 `yaml:"fuzzy_match_threshold" mapstructure:"fuzzy_match_threshold"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	MaxConcurrentRequests int `yaml:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.requests_per_second", 5)
	v.SetDefault("ocr.provider", "mistral")
	v.SetDefault("ocr.model", "pixtral-large-latest")
	v.SetDefault("ocr.max_concurrency", 4)
	v.SetDefault("asr.base_url", "https://api.speechflow.io/asr/v1")
	v.SetDefault("asr.model", "legal-general")
	v.SetDefault("asr.max_concurrency", 2)
	v.SetDefault("pipeline.max_inference_attempts", 3)
	v.SetDefault("pipeline.fuzzy_match_threshold", 0.6)
	v.SetDefault("batch.max_concurrent_requests", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
