package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meridian-scm/docrag/embed"
)

type Config struct {
	LogFile       string `yaml:"log"`
	ServerAddr    string `yaml:"server_addr"`
	UploadRoot    string `yaml:"upload_root"`
	MergeEventsMs int    `yaml:"write_debounce_ms"`

	Embedder       string `yaml:"embedder"`
	EmbeddingModel string `yaml:"embedding_model"`
	ModelsDir      string `yaml:"models_dir"`

	MaxTextChars int `yaml:"max_text_chars"`
	MaxChunks    int `yaml:"max_chunks"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	Results      int `yaml:"results"`

	Chroma *struct {
		URL        string `yaml:"url"`
		Collection string `yaml:"collection"`
	} `yaml:"chroma"`
	Ollama *struct {
		URL       string `yaml:"url"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"ollama"`
}

// readConfig loads the YAML config. A missing file is not an error: every
// setting has a default, and without remote credentials the subsystem runs
// fully offline in local mode.
func readConfig(cfgPath string) (*Config, error) {
	cfg := &Config{}

	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to open config file: %w", err)
		}
	} else {
		defer cfgFile.Close()
		dec := yaml.NewDecoder(cfgFile)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = "localhost:8057"
	}
	if cfg.MergeEventsMs == 0 {
		cfg.MergeEventsMs = 500
	}
	if cfg.Embedder == "" {
		cfg.Embedder = "minilm"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = embed.DefaultModel
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "./models"
	}
	if cfg.MaxTextChars == 0 {
		cfg.MaxTextChars = 1_000_000
	}
	if cfg.MaxChunks == 0 {
		cfg.MaxChunks = 5000
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.Results == 0 {
		cfg.Results = 5
	}

	// Remote credentials may come from the environment instead of the file.
	if url := os.Getenv("CHROMA_URL"); url != "" && cfg.chromaURL() == "" {
		cfg.Chroma = &struct {
			URL        string `yaml:"url"`
			Collection string `yaml:"collection"`
		}{URL: url}
	}
	if cfg.Chroma != nil && cfg.Chroma.Collection == "" {
		cfg.Chroma.Collection = "scm-documents"
	}
}

func (cfg *Config) chromaURL() string {
	if cfg.Chroma == nil {
		return ""
	}
	return cfg.Chroma.URL
}

func (cfg *Config) chromaCollection() string {
	if cfg.Chroma == nil {
		return "scm-documents"
	}
	return cfg.Chroma.Collection
}
