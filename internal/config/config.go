// Package config loads generator and server settings from the environment,
// an optional .env file and an optional YAML file.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"screening-datagen/internal/background"
	"screening-datagen/internal/core"
	"screening-datagen/internal/llm"
	"screening-datagen/internal/logger"
)

// Providers accepted by Validate.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// OpenAIModels are the OpenAI models the generator is tuned for.
var OpenAIModels = []string{"gpt-4o", "gpt-4.1", "gpt-4.1-mini", "gpt-5-mini"}

// Sink names accepted by Validate.
var SinkNames = []string{"file", "postgres", "sqlite", "mongo", "redis", "kafka"}

type Config struct {
	// LLM
	Provider                string  `yaml:"provider"`
	Model                   string  `yaml:"model"`
	OpenAIAPIKey            string  `yaml:"openai_api_key"`
	OpenAIBaseURL           string  `yaml:"openai_base_url"`
	GeminiAPIKey            string  `yaml:"gemini_api_key"`
	Temperature             float64 `yaml:"temperature"`
	MaxTokens               int     `yaml:"max_tokens"`
	ManagerTemperature      float64 `yaml:"manager_temperature"`
	ManagerMaxTokens        int     `yaml:"manager_max_tokens"`
	PatientManagerMaxTokens int     `yaml:"patient_manager_max_tokens"`
	RandomTemperature       bool    `yaml:"random_temperature"`
	RandomMaxTokens         bool    `yaml:"random_max_tokens"`
	BackgroundTemperature   float64 `yaml:"background_temperature"`
	BackgroundMaxTokens     int     `yaml:"background_max_tokens"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Sinks
	Sinks     []string `yaml:"sinks"`
	OutputDir string   `yaml:"output_dir"`

	// Database
	DatabaseURL   string `yaml:"database_url"`
	SQLitePath    string `yaml:"sqlite_path"`
	NotifyChannel string `yaml:"notify_channel"`

	// Mongo
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// Redis
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`

	// Kafka
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// Server
	ServerPort string `yaml:"server_port"`
	FontPath   string `yaml:"font_path"`
}

// Load reads a .env file when one exists and then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() *Config {
	def := core.DefaultParams()
	return &Config{
		Provider:                getEnv("LLM_PROVIDER", def.Provider),
		Model:                   getEnv("LLM_MODEL", def.Model),
		OpenAIAPIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:           getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		Temperature:             getFloatEnv("LLM_TEMPERATURE", def.Temperature),
		MaxTokens:               getIntEnv("LLM_MAX_TOKENS", def.MaxTokens),
		ManagerTemperature:      getFloatEnv("MANAGER_TEMPERATURE", def.ManagerTemperature),
		ManagerMaxTokens:        getIntEnv("MANAGER_MAX_TOKENS", def.ManagerMaxTokens),
		PatientManagerMaxTokens: getIntEnv("PATIENT_MANAGER_MAX_TOKENS", def.PatientManagerMaxTokens),
		RandomTemperature:       getBoolEnv("RANDOM_TEMPERATURE", false),
		RandomMaxTokens:         getBoolEnv("RANDOM_MAX_TOKENS", false),
		BackgroundTemperature:   getFloatEnv("BACKGROUND_WRITER_TEMPERATURE", 1.0),
		BackgroundMaxTokens:     getIntEnv("BACKGROUND_WRITER_MAX_TOKENS", 1000),

		LogLevel:  getEnv("LOG_LEVEL", logger.Minimal),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Sinks:     getStringSliceEnv("SINKS", []string{"file"}),
		OutputDir: getEnv("OUTPUT_DIR", "outputs"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "sessions.db"),
		NotifyChannel: getEnv("NOTIFY_CHANNEL", "session_saved"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "screening"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisTTL:      getDuration("REDIS_TTL", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "screening.sessions"),

		ServerPort: getEnv("PORT", "8080"),
		FontPath:   getEnv("PDF_FONT_PATH", ""),
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the provider, model, log level and sink names.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if !contains(OpenAIModels, c.Model) {
			return fmt.Errorf("unsupported openai model %q (want one of %s)", c.Model, strings.Join(OpenAIModels, ", "))
		}
	case ProviderGemini:
		if !strings.HasPrefix(c.Model, "gemini-") {
			return fmt.Errorf("unsupported gemini model %q", c.Model)
		}
	default:
		return fmt.Errorf("unknown provider %q (want openai or gemini)", c.Provider)
	}
	if _, err := logger.ParseTier(c.LogLevel); err != nil {
		return err
	}
	for _, s := range c.Sinks {
		if !contains(SinkNames, s) {
			return fmt.Errorf("unknown sink %q (want one of %s)", s, strings.Join(SinkNames, ", "))
		}
	}
	return nil
}

// EngineParams converts the LLM settings into engine parameters.
func (c *Config) EngineParams() core.Params {
	return core.Params{
		Provider:                c.Provider,
		Model:                   c.Model,
		Temperature:             c.Temperature,
		MaxTokens:               c.MaxTokens,
		ManagerTemperature:      c.ManagerTemperature,
		ManagerMaxTokens:        c.ManagerMaxTokens,
		PatientManagerMaxTokens: c.PatientManagerMaxTokens,
		RandomTemperature:       c.RandomTemperature,
		RandomMaxTokens:         c.RandomMaxTokens,
	}
}

// BackgroundParams returns the call settings of the background writer.
func (c *Config) BackgroundParams() background.Params {
	return background.Params{
		Temperature: llm.Float(c.BackgroundTemperature),
		MaxTokens:   c.BackgroundMaxTokens,
	}
}

// NewLLMClient builds the client for the configured provider.
func (c *Config) NewLLMClient(ctx context.Context) (llm.Client, error) {
	switch c.Provider {
	case ProviderGemini:
		return llm.NewGeminiClient(ctx, c.GeminiAPIKey, c.Model)
	case ProviderOpenAI:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Model:   c.Model,
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", c.Provider)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma-separated value.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
