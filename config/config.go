//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the image agent configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendInMemory = "inmemory"
	BackendCOS      = "cos"
	BackendS3       = "s3"
)

// Session backends.
const (
	SessionInMemory = "inmemory"
	SessionRedis    = "redis"
)

// Environment variables that override the file configuration.
const (
	EnvProject        = "GOOGLE_CLOUD_PROJECT"
	EnvLocation       = "GOOGLE_CLOUD_LOCATION"
	EnvGenModel       = "IMAGE_GEN_MODEL"
	EnvGenRegion      = "IMAGE_GEN_MODEL_REGION"
	EnvUpscaleModel   = "IMAGE_UPSCALE_MODEL"
	EnvUpscaleRegion  = "IMAGE_UPSCALE_MODEL_REGION"
	EnvLogLevel       = "IMAGE_AGENT_LOG_LEVEL"
	EnvScratchDir     = "IMAGE_AGENT_SCRATCH_DIR"
	EnvTracesEndpoint = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	EnvSessionBackend = "IMAGE_AGENT_SESSION_BACKEND"
	EnvRedisURL       = "IMAGE_AGENT_REDIS_URL"
)

var (
	// ErrUnknownBackend is returned for a store backend other than inmemory, cos and s3,
	// or a session backend other than inmemory and redis.
	ErrUnknownBackend = errors.New("config: unknown store backend")
	// ErrMissingSetting is returned when a selected backend lacks a required setting.
	ErrMissingSetting = errors.New("config: missing setting")
)

// Config is the image agent configuration.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Log           LogConfig           `yaml:"log"`
	ScratchDir    string              `yaml:"scratch_dir"`
	Session       SessionConfig       `yaml:"session"`
	Store         StoreConfig         `yaml:"store"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
	Generation    GenerationConfig    `yaml:"generation"`
	Upscale       UpscaleConfig       `yaml:"upscale"`
	Download      DownloadConfig      `yaml:"download"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

// AppConfig names the application, user and session the CLI works on.
type AppConfig struct {
	Name    string `yaml:"name"`
	User    string `yaml:"user"`
	Session string `yaml:"session"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SessionConfig selects the session service holding the conversation history.
// The in-memory backend forgets every turn when the process exits.
type SessionConfig struct {
	Backend    string      `yaml:"backend"`
	EventLimit int         `yaml:"event_limit"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// StoreConfig selects the artifact store.
type StoreConfig struct {
	Backend string         `yaml:"backend"`
	COS     COSStoreConfig `yaml:"cos"`
	S3      S3StoreConfig  `yaml:"s3"`
}

// COSStoreConfig configures the COS artifact store.
type COSStoreConfig struct {
	Name      string        `yaml:"name"`
	BucketURL string        `yaml:"bucket_url"`
	Prefix    string        `yaml:"prefix"`
	SecretID  string        `yaml:"secret_id"`
	SecretKey string        `yaml:"secret_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// S3StoreConfig configures the S3 artifact store.
type S3StoreConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// ObjectStorageConfig enables the object fetchers behind remote image URIs.
type ObjectStorageConfig struct {
	GCS GCSConfig        `yaml:"gcs"`
	S3  S3FetcherConfig  `yaml:"s3"`
	COS COSFetcherConfig `yaml:"cos"`
}

// GCSConfig enables gs:// URIs, using application default credentials.
type GCSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// S3FetcherConfig enables s3:// URIs.
type S3FetcherConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// COSFetcherConfig enables cos:// URIs.
type COSFetcherConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Region    string        `yaml:"region"`
	SecretID  string        `yaml:"secret_id"`
	SecretKey string        `yaml:"secret_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GenerationConfig configures the Imagen and Gemini generators.
type GenerationConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Project        string `yaml:"project"`
	Location       string `yaml:"location"`
	Model          string `yaml:"model"`
	GeminiModel    string `yaml:"gemini_model"`
	GeminiLocation string `yaml:"gemini_location"`
}

// UpscaleConfig configures the upscaler.
type UpscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
	Model    string `yaml:"model"`
}

// DownloadConfig configures download_file_from_url.
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	MaxSize int64         `yaml:"max_size"`
}

// TelemetryConfig configures the OTLP exporters. Empty endpoints keep the noop providers.
type TelemetryConfig struct {
	TracesEndpoint  string `yaml:"traces_endpoint"`
	MetricsEndpoint string `yaml:"metrics_endpoint"`
	Protocol        string `yaml:"protocol"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		App:        AppConfig{Name: "image_agent", User: "user", Session: "default"},
		Log:        LogConfig{Level: "info"},
		ScratchDir: os.TempDir(),
		Session:    SessionConfig{Backend: SessionInMemory, EventLimit: 100},
		Store:      StoreConfig{Backend: BackendInMemory, COS: COSStoreConfig{Name: "image-agent"}},
		Generation: GenerationConfig{
			Enabled:        true,
			Location:       "us-central1",
			Model:          "imagen-4.0-generate-001",
			GeminiModel:    "gemini-3-pro-image-preview",
			GeminiLocation: "global",
		},
		Upscale: UpscaleConfig{
			Enabled:  true,
			Location: "us-central1",
			Model:    "imagen-4.0-upscale-preview",
		},
		Download:  DownloadConfig{Timeout: 60 * time.Second, MaxSize: 64 << 20},
		Telemetry: TelemetryConfig{Protocol: "grpc"},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment through lookup.
// GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION apply to both the generation
// and upscale sections; the model specific variables take precedence.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Generation.Project, EnvProject)
	set(&c.Upscale.Project, EnvProject)
	set(&c.Generation.Location, EnvLocation)
	set(&c.Upscale.Location, EnvLocation)
	set(&c.Generation.Model, EnvGenModel)
	set(&c.Generation.Location, EnvGenRegion)
	set(&c.Upscale.Model, EnvUpscaleModel)
	set(&c.Upscale.Location, EnvUpscaleRegion)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.ScratchDir, EnvScratchDir)
	set(&c.Telemetry.TracesEndpoint, EnvTracesEndpoint)
	set(&c.Session.Backend, EnvSessionBackend)
	set(&c.Session.Redis.URL, EnvRedisURL)
}

// Validate checks the session and store selections.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "", SessionInMemory:
	case SessionRedis:
		if c.Session.Redis.URL == "" {
			return fmt.Errorf("%w: session.redis.url", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: session %q", ErrUnknownBackend, c.Session.Backend)
	}
	switch c.Store.Backend {
	case "", BackendInMemory:
	case BackendCOS:
		if c.Store.COS.BucketURL == "" {
			return fmt.Errorf("%w: store.cos.bucket_url", ErrMissingSetting)
		}
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("%w: store.s3.bucket", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	return nil
}
