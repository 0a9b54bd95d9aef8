package config

import (
	"log/slog"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		StoreBackend:        StoreMemory,
		EmbedProvider:       ProviderOllama,
		EmbedModel:          "nomic-embed-text",
		EmbedDimension:      768,
		EmbedTimeout:        time.Second,
		EmbedMaxRetries:     3,
		MaxChunkSize:        400,
		MinChunkSize:        150,
		ChunkOverlap:        50,
		SimilarityThreshold: 0.75,
		ParentMinSize:       1000,
		ParentMaxSize:       2000,
		TopK:                4,
		ContextBudget:       3000,
		Concurrency:         4,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "min above max", mutate: func(c *Config) { c.MinChunkSize = 500 }, wantErr: true},
		{name: "zero max", mutate: func(c *Config) { c.MaxChunkSize = 0 }, wantErr: true},
		{name: "overlap at min", mutate: func(c *Config) { c.ChunkOverlap = 150 }, wantErr: true},
		{name: "negative overlap", mutate: func(c *Config) { c.ChunkOverlap = -1 }, wantErr: true},
		{name: "threshold too high", mutate: func(c *Config) { c.SimilarityThreshold = 1.0 }, wantErr: true},
		{name: "zero top k", mutate: func(c *Config) { c.TopK = 0 }, wantErr: true},
		{name: "zero budget", mutate: func(c *Config) { c.ContextBudget = 0 }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "etcd" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.EmbedProvider = "bedrock" }, wantErr: true},
		{name: "zero dimension", mutate: func(c *Config) { c.EmbedDimension = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: true},
		{
			name: "parent bounds inverted",
			mutate: func(c *Config) {
				c.UseHierarchy = true
				c.ParentMinSize = 2000
				c.ParentMaxSize = 1000
			},
			wantErr: true,
		},
		{
			name: "parent min below chunk max",
			mutate: func(c *Config) {
				c.UseHierarchy = true
				c.ParentMinSize = 300
			},
			wantErr: true,
		},
		{
			name: "hierarchy off ignores parent bounds",
			mutate: func(c *Config) {
				c.ParentMinSize = 0
				c.ParentMaxSize = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.MaxChunkSize != 400 || cfg.MinChunkSize != 150 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunk defaults = %d/%d/%d", cfg.MaxChunkSize, cfg.MinChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d", cfg.TopK)
	}
	if cfg.ParentMinSize != 1000 || cfg.ParentMaxSize != 2000 {
		t.Errorf("parent bounds = %d/%d", cfg.ParentMinSize, cfg.ParentMaxSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
