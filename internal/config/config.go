// Package config holds the application configuration: a YAML file for
// tunables plus environment-sourced credentials resolved once at
// startup and passed into constructors.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the Ollama embeddings client.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	FallbackDim int    `yaml:"fallback_dim"`
}

// LocalBackendConfig configures the local Ollama chat backend.
type LocalBackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RemoteBackendConfig configures the OpenRouter backend. The API key
// and base URL come from the environment, never the YAML file.
type RemoteBackendConfig struct {
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig bounds chunking, ranking and context assembly.
type RetrievalConfig struct {
	ChunkMaxChars     int     `yaml:"chunk_max_chars"`
	TopK              int     `yaml:"top_k"`
	DocumentThreshold float64 `yaml:"document_threshold"`
	MaxContextChars   int     `yaml:"max_context_chars"`
}

// SessionConfig bounds conversation behavior.
type SessionConfig struct {
	HistoryWindow int    `yaml:"history_window"`
	SystemPrompt  string `yaml:"system_prompt"`
}

// DocumentsConfig locates source documents and persisted indexes.
type DocumentsConfig struct {
	Dir      string `yaml:"dir"`
	IndexDir string `yaml:"index_dir"`
}

// WebConfig configures web search.
type WebConfig struct {
	MaxResults  int `yaml:"max_results"`
	TimeoutSecs int `yaml:"timeout_secs"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Embedding EmbeddingConfig     `yaml:"embedding"`
	Local     LocalBackendConfig  `yaml:"local_backend"`
	Remote    RemoteBackendConfig `yaml:"remote_backend"`
	Retrieval RetrievalConfig     `yaml:"retrieval"`
	Session   SessionConfig       `yaml:"session"`
	Documents DocumentsConfig     `yaml:"documents"`
	Web       WebConfig           `yaml:"web"`
}

// Credentials are resolved from the environment once at startup. No
// other component reads env state directly.
type Credentials struct {
	OnlineAPIKey  string
	OnlineBaseURL string
	OnlineModel   string
	GoogleAPIKey  string
	GoogleCX      string
	UnidocLicense string
}

// CredentialsFromEnv reads the credential environment variables.
// Callers decide which absences are fatal: a missing online key only
// disables the remote backend.
func CredentialsFromEnv() Credentials {
	return Credentials{
		OnlineAPIKey:  os.Getenv("ONLINE_API_KEY"),
		OnlineBaseURL: os.Getenv("ONLINE_MODEL_URL"),
		OnlineModel:   os.Getenv("ONLINE_MODEL_NAME"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GoogleCX:      os.Getenv("GOOGLE_CX"),
		UnidocLicense: os.Getenv("UNIDOC_LICENSE_KEY"),
	}
}

// HasRemote reports whether the remote backend can be constructed.
func (c Credentials) HasRemote() bool {
	return c.OnlineAPIKey != "" && c.OnlineBaseURL != ""
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.FallbackDim == 0 {
		cfg.Embedding.FallbackDim = 384
	}
	if cfg.Local.BaseURL == "" {
		cfg.Local.BaseURL = "http://localhost:11434"
	}
	if cfg.Local.Model == "" {
		cfg.Local.Model = "llama3.1:8b"
	}
	if cfg.Local.TimeoutSecs == 0 {
		cfg.Local.TimeoutSecs = 120
	}
	if cfg.Remote.Model == "" {
		cfg.Remote.Model = "mistralai/mistral-small-3.1-24b-instruct:free"
	}
	if cfg.Remote.TimeoutSecs == 0 {
		cfg.Remote.TimeoutSecs = 60
	}
	if cfg.Retrieval.ChunkMaxChars == 0 {
		cfg.Retrieval.ChunkMaxChars = 500
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.DocumentThreshold == 0 {
		cfg.Retrieval.DocumentThreshold = 0.7
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = 1000
	}
	if cfg.Session.HistoryWindow == 0 {
		cfg.Session.HistoryWindow = 5
	}
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = "documents"
	}
	if cfg.Documents.IndexDir == "" {
		cfg.Documents.IndexDir = "embeddings"
	}
	if cfg.Web.MaxResults == 0 {
		cfg.Web.MaxResults = 2
	}
	if cfg.Web.TimeoutSecs == 0 {
		cfg.Web.TimeoutSecs = 10
	}
}
