package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	BaseURL  string `yaml:"base_url"` // public base used for media URLs
	MediaDir string `yaml:"media_dir"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	GroqKey         string `yaml:"groq_key"`
	GroqURL         string `yaml:"groq_url"`
	HuggingFaceKey  string `yaml:"huggingface_key"`
	HuggingFaceURL  string `yaml:"huggingface_url"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type ChatConfig struct {
	RevealInterval time.Duration `yaml:"reveal_interval"` // per-token spacing
	RetentionDays  int           `yaml:"retention_days"`  // persisted message retention
	Workers        int           `yaml:"workers"`         // persistence worker pool size
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Chat     ChatConfig     `yaml:"chat"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MediaDir == "" {
		cfg.Server.MediaDir = "data/media"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Chat.RevealInterval <= 0 {
		cfg.Chat.RevealInterval = 75 * time.Millisecond
	}
	if cfg.Chat.RetentionDays <= 0 {
		cfg.Chat.RetentionDays = 90
	}
	if cfg.Chat.Workers <= 0 {
		cfg.Chat.Workers = 4
	}

	// Minimal validation. Provider keys are deliberately NOT validated:
	// a missing credential is non-fatal and surfaces as advisory text.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
