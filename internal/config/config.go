package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug bool `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-large"`
	OpenAIChatModel      string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	EmbeddingDimensions  int    `envconfig:"EMBEDDING_DIMENSIONS" default:"3072"`
	EmbeddingCacheSize   int    `envconfig:"EMBEDDING_CACHE_SIZE" default:"512"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	TopK                int     `envconfig:"TOP_K" default:"5"`
	MinScore            float64 `envconfig:"MIN_SCORE" default:"0.7"`
	RelaxFactor         float64 `envconfig:"RELAX_FACTOR" default:"0.7"`
	OverfetchMultiplier int     `envconfig:"OVERFETCH_MULTIPLIER" default:"3"`
	OverfetchFloor      int     `envconfig:"OVERFETCH_FLOOR" default:"20"`

	MaxDocuments    int `envconfig:"MAX_DOCUMENTS" default:"5"`
	MaxContextChars int `envconfig:"MAX_CONTEXT_CHARS" default:"8000"`

	WatchInterval time.Duration `envconfig:"WATCH_INTERVAL" default:"10s"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCVAULT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
