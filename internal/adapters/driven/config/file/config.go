// Package file loads and persists dockeep configuration as a TOML file
// in the dockeep home directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration. Zero values are filled with
// defaults on load, so a missing or partial config file is fine.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Detector DetectorConfig `toml:"detector"`

	path string
}

// LibraryConfig holds the on-disk layout of the library.
type LibraryConfig struct {
	// Dir is where managed document files live.
	Dir string `toml:"dir"`

	// InboxDir is the drop folder watched by `dockeep watch`.
	InboxDir string `toml:"inbox_dir"`

	// DataDir is where the metadata database lives.
	DataDir string `toml:"data_dir"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
	)
}

// OpenAIConfig holds the settings shared by the embedding and
// classification adapters. The API key is read from the environment,
// never stored in the file.
type OpenAIConfig struct {
	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	ChatModel      string `toml:"chat_model"`
	Dimensions     int    `toml:"dimensions"`
}

// Validate validates the OpenAI configuration.
func (c *OpenAIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.EmbeddingModel, validation.Required),
		validation.Field(&c.ChatModel, validation.Required),
		validation.Field(&c.Dimensions, validation.Min(0)),
	)
}

// DetectorConfig holds the duplicate detector thresholds.
type DetectorConfig struct {
	EmbeddingDistanceMax float64 `toml:"embedding_distance_max"`
	EditSimilarityMin    float64 `toml:"edit_similarity_min"`
}

// Validate validates the detector thresholds.
func (c *DetectorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EmbeddingDistanceMax, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.EditSimilarityMin, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	if err := c.Library.Validate(); err != nil {
		return fmt.Errorf("library: %w", err)
	}
	if err := c.OpenAI.Validate(); err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	return nil
}

// APIKey returns the OpenAI API key from the environment, or "" when the
// model-backed adapters should be disabled.
func (c *Config) APIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// Load reads the configuration from configDir/config.toml, creating the
// directory and applying defaults as needed. If configDir is empty it
// defaults to ~/.dockeep.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".dockeep")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	cfg := &Config{path: filepath.Join(configDir, "config.toml")}

	data, err := os.ReadFile(cfg.path)
	switch {
	case os.IsNotExist(err):
		// No config file yet - defaults only
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", cfg.path, err)
		}
	}

	cfg.applyDefaults(configDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save persists the configuration to disk with restricted permissions.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

func (c *Config) applyDefaults(configDir string) {
	if c.Library.Dir == "" {
		c.Library.Dir = filepath.Join(configDir, "library")
	}
	if c.Library.InboxDir == "" {
		c.Library.InboxDir = filepath.Join(configDir, "inbox")
	}
	if c.Library.DataDir == "" {
		c.Library.DataDir = filepath.Join(configDir, "data")
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.Detector.EmbeddingDistanceMax == 0 {
		c.Detector.EmbeddingDistanceMax = 0.6
	}
	if c.Detector.EditSimilarityMin == 0 {
		c.Detector.EditSimilarityMin = 0.60
	}
}
