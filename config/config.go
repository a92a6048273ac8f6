// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Backend names.
const (
	BackendBadger   = "badger"
	BackendNeo4j    = "neo4j"
	BackendPgvector = "pgvector"
)

// Environment variables that override file settings. Secrets are only read from the environment.
const (
	EnvDataPath      = "NETSIGHT_DATA_PATH"
	EnvAPIKey        = "NETSIGHT_API_KEY"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvEmbeddingHost = "NETSIGHT_EMBEDDING_HOST"
	EnvChatHost      = "NETSIGHT_CHAT_HOST"
	EnvNeo4jURI      = "NETSIGHT_NEO4J_URI"
	EnvNeo4jUsername = "NETSIGHT_NEO4J_USERNAME"
	EnvNeo4jPassword = "NETSIGHT_NEO4J_PASSWORD"
	EnvPostgresDSN   = "NETSIGHT_POSTGRES_DSN"
)

// Config is the complete application configuration.
// It is built once at startup and not modified afterwards.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Search    SearchConfig    `yaml:"search"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// StorageConfig selects the graph and vector backends.
type StorageConfig struct {
	// Graph is "badger" or "neo4j".
	Graph string `yaml:"graph"`

	// Vector is "badger" or "pgvector".
	Vector string `yaml:"vector"`

	// Path is the badger data directory.
	Path string `yaml:"path"`

	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// Neo4jConfig holds Neo4j connection details.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
	Database string `yaml:"database"`
}

// PostgresConfig holds pgvector connection details.
type PostgresConfig struct {
	DSN       string `yaml:"-"`
	Table     string `yaml:"table"`
	Dimension int    `yaml:"dimension"`
}

// AIConfig configures the OpenAI-compatible model endpoints.
type AIConfig struct {
	EmbeddingHost    string `yaml:"embedding_host"`
	ChatHost         string `yaml:"chat_host"`
	EmbeddingModel   string `yaml:"embedding_model"`
	ChatModel        string `yaml:"chat_model"`
	APIKey           string `yaml:"-"`
	SummaryMaxTokens int    `yaml:"summary_max_tokens"`

	// ExtractFilters derives structured filters from text-only queries.
	ExtractFilters bool `yaml:"extract_filters"`
}

// SearchConfig configures the query orchestrator.
type SearchConfig struct {
	TopK                  int           `yaml:"top_k"`
	SummaryCandidateCount int           `yaml:"summary_candidate_count"`
	SummarizerTimeout     time.Duration `yaml:"summarizer_timeout"`
	MinSimilarity         float32       `yaml:"min_similarity"`
	CacheSize             int           `yaml:"cache_size"`
	BreakerFailures       uint32        `yaml:"breaker_failures"`
	BreakerCooldown       time.Duration `yaml:"breaker_cooldown"`
}

// IngestionConfig configures the ingestion pipeline and re-embedding.
type IngestionConfig struct {
	BatchSize         int           `yaml:"batch_size"`
	Workers           int           `yaml:"workers"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
}

// Default returns the default configuration: embedded badger storage and a
// local OpenAI-compatible model server.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Graph:  BackendBadger,
			Vector: BackendBadger,
			Path:   defaultDataPath(),
			Neo4j: Neo4jConfig{
				URI:      "neo4j://localhost:7687",
				Username: "neo4j",
				Database: "neo4j",
			},
			Postgres: PostgresConfig{
				Table:     "person_embeddings",
				Dimension: 768,
			},
		},
		AI: AIConfig{
			EmbeddingHost:    "http://localhost:11434/v1",
			ChatHost:         "http://localhost:11434/v1",
			EmbeddingModel:   "embeddinggemma",
			ChatModel:        "qwen2.5:3b",
			SummaryMaxTokens: 512,
		},
		Search: SearchConfig{
			TopK:                  50,
			SummaryCandidateCount: 10,
			SummarizerTimeout:     20 * time.Second,
			MinSimilarity:         0.7,
			CacheSize:             256,
			BreakerFailures:       3,
			BreakerCooldown:       30 * time.Second,
		},
		Ingestion: IngestionConfig{
			BatchSize:         64,
			Workers:           4,
			RequestsPerSecond: 0,
			Burst:             1,
			MaxRetries:        3,
			RetryDelay:        time.Second,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration as YAML. Secrets are never written.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Storage.Path, EnvDataPath)
	setFromEnv(&c.AI.APIKey, EnvOpenAIAPIKey)
	setFromEnv(&c.AI.APIKey, EnvAPIKey)
	setFromEnv(&c.AI.EmbeddingHost, EnvEmbeddingHost)
	setFromEnv(&c.AI.ChatHost, EnvChatHost)
	setFromEnv(&c.Storage.Neo4j.URI, EnvNeo4jURI)
	setFromEnv(&c.Storage.Neo4j.Username, EnvNeo4jUsername)
	setFromEnv(&c.Storage.Neo4j.Password, EnvNeo4jPassword)
	setFromEnv(&c.Storage.Postgres.DSN, EnvPostgresDSN)
}

func setFromEnv(field *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*field = v
	}
}

// Validate checks the configuration for missing or inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Graph {
	case BackendBadger, BackendNeo4j:
	default:
		errs = append(errs, fmt.Errorf("storage.graph: unknown backend %q", c.Storage.Graph))
	}
	switch c.Storage.Vector {
	case BackendBadger, BackendPgvector:
	default:
		errs = append(errs, fmt.Errorf("storage.vector: unknown backend %q", c.Storage.Vector))
	}
	if (c.Storage.Graph == BackendBadger || c.Storage.Vector == BackendBadger) && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required for the badger backend"))
	}
	if c.Storage.Graph == BackendNeo4j && c.Storage.Neo4j.URI == "" {
		errs = append(errs, errors.New("storage.neo4j.uri is required"))
	}
	if c.Storage.Vector == BackendPgvector {
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, fmt.Errorf("%s is required for the pgvector backend", EnvPostgresDSN))
		}
		if c.Storage.Postgres.Dimension < 1 {
			errs = append(errs, errors.New("storage.postgres.dimension must be positive"))
		}
	}

	if c.AI.EmbeddingModel == "" {
		errs = append(errs, errors.New("ai.embedding_model is required"))
	}
	if c.AI.ChatModel == "" {
		errs = append(errs, errors.New("ai.chat_model is required"))
	}

	s := c.Search
	if s.TopK < 1 {
		errs = append(errs, errors.New("search.top_k must be positive"))
	}
	if s.SummaryCandidateCount < 1 || s.SummaryCandidateCount > s.TopK {
		errs = append(errs, errors.New("search.summary_candidate_count must be between 1 and search.top_k"))
	}
	if s.SummarizerTimeout <= 0 {
		errs = append(errs, errors.New("search.summarizer_timeout must be positive"))
	}
	if s.BreakerFailures < 1 {
		errs = append(errs, errors.New("search.breaker_failures must be positive"))
	}
	if s.BreakerCooldown <= 0 {
		errs = append(errs, errors.New("search.breaker_cooldown must be positive"))
	}
	if s.MinSimilarity < -1 || s.MinSimilarity > 1 {
		errs = append(errs, errors.New("search.min_similarity must be between -1 and 1"))
	}
	if s.CacheSize < 0 {
		errs = append(errs, errors.New("search.cache_size must not be negative"))
	}

	in := c.Ingestion
	if in.BatchSize < 1 {
		errs = append(errs, errors.New("ingestion.batch_size must be positive"))
	}
	if in.Workers < 1 {
		errs = append(errs, errors.New("ingestion.workers must be positive"))
	}
	if in.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("ingestion.requests_per_second must not be negative"))
	}
	if in.MaxRetries < 1 {
		errs = append(errs, errors.New("ingestion.max_retries must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "netsight-data")
	}
	return filepath.Join(home, ".local", "share", "netsight")
}
