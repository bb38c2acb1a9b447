package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the RAG tool. Secrets are never stored
// here, only the names of the environment variables that hold them.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Documents DocumentsConfig `yaml:"documents"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Upsert    UpsertConfig    `yaml:"upsert"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Answer    AnswerConfig    `yaml:"answer"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	Name             string          `yaml:"name"`
	Provider         string          `yaml:"provider"` // "pinecone", "bolt", "memory"
	Metric           string          `yaml:"metric"`   // "cosine", "dot", "euclidean"
	PollIntervalSecs int             `yaml:"poll_interval_secs"`
	ReadyTimeoutSecs int             `yaml:"ready_timeout_secs"`
	SettleSecs       int             `yaml:"settle_secs"`
	Pinecone         *PineconeConfig `yaml:"pinecone,omitempty"`
	Bolt             *BoltConfig     `yaml:"bolt,omitempty"`
}

// PineconeConfig contains connection details for Pinecone serverless.
type PineconeConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Cloud     string `yaml:"cloud"`
	Region    string `yaml:"region"`
}

// BoltConfig contains the database path for the local index provider.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// DocumentsConfig describes where documents are loaded from.
type DocumentsConfig struct {
	Folder   string   `yaml:"folder"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkConfig configures how documents are split into chunks.
type ChunkConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"` // "gemini", "openai", "mock"
	Model        string `yaml:"model"`
	APIKeyEnv    string `yaml:"api_key_env"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Dimension    int    `yaml:"dimension"`
	BatchSize    int    `yaml:"batch_size"`
	BatchDelayMs int    `yaml:"batch_delay_ms"`
}

// UpsertConfig paces writes to the vector index.
type UpsertConfig struct {
	BatchSize    int `yaml:"batch_size"`
	BatchDelayMs int `yaml:"batch_delay_ms"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// AnswerConfig holds answer composition configuration.
type AnswerConfig struct {
	Model        string `yaml:"model"`
	APIKeyEnv    string `yaml:"api_key_env"`
	PreviewChars int    `yaml:"preview_chars"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Name:             "documents-rag",
			Provider:         "pinecone",
			Metric:           "cosine",
			PollIntervalSecs: 5,
			ReadyTimeoutSecs: 120,
			SettleSecs:       5,
			Pinecone: &PineconeConfig{
				APIKeyEnv: "PINECONE_API_KEY",
				Cloud:     "aws",
				Region:    "us-east-1",
			},
			Bolt: &BoltConfig{
				Path: filepath.Join(".rag", "vectors.db"),
			},
		},
		Documents: DocumentsConfig{
			Folder:   "output",
			Includes: []string{"**/*.txt"},
		},
		Chunk: ChunkConfig{
			Size:    1000,
			Overlap: 200,
		},
		Embedding: EmbeddingConfig{
			Provider:     "gemini",
			Model:        "embedding-001",
			APIKeyEnv:    "GEMINI_API_KEY",
			Dimension:    768,
			BatchSize:    10,
			BatchDelayMs: 500,
		},
		Upsert: UpsertConfig{
			BatchSize:    100,
			BatchDelayMs: 1000,
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Answer: AnswerConfig{
			Model:        "gemini-2.5-flash-lite",
			APIKeyEnv:    "GEMINI_API_KEY",
			PreviewChars: 400,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for rag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "rag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".rag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that the configuration names everything the selected
// providers need. Missing credentials are fatal here, before any partial
// execution.
func (c *Config) Validate() error {
	if c.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}
	switch c.Index.Metric {
	case "cosine", "dot", "euclidean":
	default:
		return fmt.Errorf("index.metric must be cosine, dot or euclidean, got %q", c.Index.Metric)
	}
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk.size must be positive")
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk.overlap must be in [0, chunk.size)")
	}

	switch c.Index.Provider {
	case "pinecone":
		if c.Index.Pinecone == nil {
			return fmt.Errorf("index.pinecone configuration is required for the pinecone provider")
		}
		if err := requireEnv(c.Index.Pinecone.APIKeyEnv, "index.pinecone.api_key_env"); err != nil {
			return err
		}
	case "bolt":
		if c.Index.Bolt == nil || c.Index.Bolt.Path == "" {
			return fmt.Errorf("index.bolt.path is required for the bolt provider")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported index provider: %s", c.Index.Provider)
	}

	switch c.Embedding.Provider {
	case "gemini", "openai":
		if err := requireEnv(c.Embedding.APIKeyEnv, "embedding.api_key_env"); err != nil {
			return err
		}
	case "mock":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	return nil
}

// ValidateAnswer additionally checks the generation credentials, needed only
// by the query-time surface.
func (c *Config) ValidateAnswer() error {
	return requireEnv(c.Answer.APIKeyEnv, "answer.api_key_env")
}

func requireEnv(name, field string) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if os.Getenv(name) == "" {
		return fmt.Errorf("missing credential: environment variable %s is not set (configured by %s)", name, field)
	}
	return nil
}
