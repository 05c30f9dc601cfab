package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Anthropic  AnthropicConfig
	Generator  GeneratorConfig
	Redis      RedisConfig
	Pipeline   PipelineConfig
	Validation ValidationConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey             string
	Model              string
	EmbeddingModel     string
	EmbeddingDimension int
	MaxOutputTokens    int
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// GeneratorConfig selects the reasoning backend used for audits.
type GeneratorConfig struct {
	Provider string
}

// RedisConfig enables the embedding cache when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

type PipelineConfig struct {
	TopK              int
	EmbeddingTimeout  time.Duration
	VectorTimeout     time.Duration
	GenerationTimeout time.Duration
}

type ValidationConfig struct {
	MinSubmissionLength int
	StrictRange         bool
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

// WorkerConfig sizes the async pool. JobLease is how long a record may stay
// in processing before the poller hands it back to the queue.
type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	JobLease     time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

var defaults = map[string]interface{}{
	"PORT": "3000",
	"ENV":  "development",

	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "circular_economy",
	"DB_SSLMODE":  "disable",

	"QDRANT_URL":        "http://localhost:6334",
	"QDRANT_API_KEY":    "",
	"QDRANT_COLLECTION": "circular_economy_cases",

	"GEMINI_API_KEY":           "",
	"GEMINI_MODEL":             "gemini-2.5-flash",
	"GEMINI_EMBEDDING_MODEL":   "gemini-embedding-001",
	"EMBEDDING_DIMENSION":      1536,
	"GEMINI_MAX_OUTPUT_TOKENS": 4096,

	"ANTHROPIC_API_KEY":    "",
	"ANTHROPIC_MODEL":      "claude-sonnet-4-20250514",
	"ANTHROPIC_MAX_TOKENS": 4096,
	"GENERATOR_PROVIDER":   ProviderGemini,

	"REDIS_ADDRESS":   "",
	"REDIS_PASSWORD":  "",
	"REDIS_DB":        0,
	"REDIS_CACHE_TTL": "24h",

	"PIPELINE_TOP_K":       3,
	"EMBEDDING_TIMEOUT":    "10s",
	"VECTOR_QUERY_TIMEOUT": "5s",
	"GENERATION_TIMEOUT":   "60s",

	"VALIDATION_MIN_SUBMISSION_LENGTH": 200,
	"VALIDATION_STRICT_RANGE":          false,

	"UPLOAD_PATH":   "./uploads",
	"MAX_FILE_SIZE": 10485760,

	"WORKER_CONCURRENCY":   3,
	"WORKER_QUEUE_SIZE":    100,
	"WORKER_POLL_INTERVAL": "10s",
	"WORKER_JOB_LEASE":     "10m",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "console",

	"OTEL_SERVICE_NAME":           "circular-economy-api",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	envLoaded := godotenv.Load() == nil

	cfg := fromViper(newViper())
	if !envLoaded && cfg.Server.Env == "development" {
		fmt.Println("No .env file found. Using environment and default values.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Gemini: GeminiConfig{
			APIKey:             v.GetString("GEMINI_API_KEY"),
			Model:              v.GetString("GEMINI_MODEL"),
			EmbeddingModel:     v.GetString("GEMINI_EMBEDDING_MODEL"),
			EmbeddingDimension: v.GetInt("EMBEDDING_DIMENSION"),
			MaxOutputTokens:    v.GetInt("GEMINI_MAX_OUTPUT_TOKENS"),
		},
		Anthropic: AnthropicConfig{
			APIKey:    v.GetString("ANTHROPIC_API_KEY"),
			Model:     v.GetString("ANTHROPIC_MODEL"),
			MaxTokens: v.GetInt("ANTHROPIC_MAX_TOKENS"),
		},
		Generator: GeneratorConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("GENERATOR_PROVIDER"))),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("REDIS_CACHE_TTL"),
		},
		Pipeline: PipelineConfig{
			TopK:              v.GetInt("PIPELINE_TOP_K"),
			EmbeddingTimeout:  v.GetDuration("EMBEDDING_TIMEOUT"),
			VectorTimeout:     v.GetDuration("VECTOR_QUERY_TIMEOUT"),
			GenerationTimeout: v.GetDuration("GENERATION_TIMEOUT"),
		},
		Validation: ValidationConfig{
			MinSubmissionLength: v.GetInt("VALIDATION_MIN_SUBMISSION_LENGTH"),
			StrictRange:         v.GetBool("VALIDATION_STRICT_RANGE"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Worker: WorkerConfig{
			Concurrency:  v.GetInt("WORKER_CONCURRENCY"),
			QueueSize:    v.GetInt("WORKER_QUEUE_SIZE"),
			PollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
			JobLease:     v.GetDuration("WORKER_JOB_LEASE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required for embeddings"))
	}

	switch c.Generator.Provider {
	case ProviderGemini:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when GENERATOR_PROVIDER=anthropic"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.Generator.Provider))
	}

	if c.Gemini.EmbeddingDimension <= 0 {
		errs = append(errs, errors.New("EMBEDDING_DIMENSION must be positive"))
	}
	if c.Pipeline.TopK <= 0 {
		errs = append(errs, errors.New("PIPELINE_TOP_K must be positive"))
	}
	if c.Pipeline.EmbeddingTimeout <= 0 || c.Pipeline.VectorTimeout <= 0 || c.Pipeline.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("pipeline timeouts must be positive"))
	}
	if c.Worker.Concurrency <= 0 || c.Worker.QueueSize <= 0 {
		errs = append(errs, errors.New("worker concurrency and queue size must be positive"))
	}
	if c.Worker.JobLease <= c.Pipeline.maxRunTime() {
		errs = append(errs, errors.New("WORKER_JOB_LEASE must exceed the longest possible pipeline run"))
	}
	if c.Storage.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// maxRunTime is the sum of the stage timeouts, counting the audit retry.
func (p PipelineConfig) maxRunTime() time.Duration {
	return p.EmbeddingTimeout + p.VectorTimeout + 2*p.GenerationTimeout
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
