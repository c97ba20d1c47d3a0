package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type ReplicateConfig struct {
	APIToken    string `toml:"api_token"`
	Model       string `toml:"model"`
	AspectRatio string `toml:"aspect_ratio"`
}

type PineconeConfig struct {
	APIKey    string `toml:"api_key"`
	IndexName string `toml:"index_name"`
	IndexHost string `toml:"index_host"`
	Namespace string `toml:"namespace"`
	Dimension int    `toml:"dimension"`
}

type FirestoreConfig struct {
	ProjectID        string `toml:"project_id"`
	SwipesCollection string `toml:"swipes_collection"`
	VideosCollection string `toml:"videos_collection"`
}

type StorageConfig struct {
	Bucket        string `toml:"bucket"`
	Prefix        string `toml:"prefix"`
	PublicBaseURL string `toml:"public_base_url"`
}

type ServerConfig struct {
	Mode          string `toml:"mode"`
	PublicBaseURL string `toml:"public_base_url"`
}

type PromptConfig struct {
	AggregatorSystem string `toml:"aggregator_system"`
}

type GenerationConfig struct {
	MaxDescriptions int   `toml:"max_descriptions"`
	MaxVideoBytes   int64 `toml:"max_video_bytes"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Replicate  ReplicateConfig  `toml:"replicate"`
	Pinecone   PineconeConfig   `toml:"pinecone"`
	Firestore  FirestoreConfig  `toml:"firestore"`
	Storage    StorageConfig    `toml:"storage"`
	Server     ServerConfig     `toml:"server"`
	Prompts    PromptConfig     `toml:"prompts"`
	Generation GenerationConfig `toml:"generation"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills in the values a minimal config file may omit.
func (c *Config) ApplyDefaults() {
	if c.Replicate.Model == "" {
		c.Replicate.Model = "luma/ray"
	}
	if c.Replicate.AspectRatio == "" {
		c.Replicate.AspectRatio = "9:16"
	}
	if c.Pinecone.Dimension == 0 {
		c.Pinecone.Dimension = 1536
	}
	if c.Firestore.SwipesCollection == "" {
		c.Firestore.SwipesCollection = "swipes"
	}
	if c.Firestore.VideosCollection == "" {
		c.Firestore.VideosCollection = "videos"
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "generated"
	}
	if c.Generation.MaxDescriptions == 0 {
		c.Generation.MaxDescriptions = 50
	}
	if c.Generation.MaxVideoBytes == 0 {
		c.Generation.MaxVideoBytes = 100 * 1024 * 1024
	}
	if c.Prompts.AggregatorSystem == "" {
		c.Prompts.AggregatorSystem = "You are a creative director for short-form video. " +
			"Write a single compelling paragraph describing a new video the viewer is likely to enjoy, " +
			"based on descriptions of videos they liked and disliked. " +
			"Lean into the themes of the liked videos and avoid the themes of the disliked ones. " +
			"Respond with the paragraph only, no preamble."
	}
}
