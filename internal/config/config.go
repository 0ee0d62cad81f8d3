package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/telemetry"
)

// Config holds SentinelGuard configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Policy     PolicyConfig     `yaml:"policy"`
	Risk       RiskConfig       `yaml:"risk"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Audit      AuditConfig      `yaml:"audit"`
	Telemetry  telemetry.Config `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8000"
}

type PolicyConfig struct {
	ChunksPath string  `yaml:"chunks_path"` // JSON corpus of policy chunks
	TopK       int     `yaml:"top_k"`
	MinScore   float64 `yaml:"min_score"`
}

type RiskConfig struct {
	LowThreshold  int `yaml:"low_threshold"`  // scores below stay LOW
	HighThreshold int `yaml:"high_threshold"` // scores at or above go HIGH
}

type ClassifierConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BundleDir string `yaml:"bundle_dir"` // dir with safety_classifier.onnx, label_map.json, tokenizer/
	SeqLen    int    `yaml:"seq_len"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // JSONL file for audit entries
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Policy.ChunksPath == "" {
		cfg.Policy.ChunksPath = "data/policy_chunks.json"
	}
	if cfg.Policy.TopK == 0 {
		cfg.Policy.TopK = 5
	}
	if cfg.Policy.MinScore == 0 {
		cfg.Policy.MinScore = 0.05
	}
	if cfg.Risk.LowThreshold == 0 {
		cfg.Risk.LowThreshold = 30
	}
	if cfg.Risk.HighThreshold == 0 {
		cfg.Risk.HighThreshold = 70
	}
	if cfg.Classifier.BundleDir == "" {
		cfg.Classifier.BundleDir = "models/safety"
	}
	if cfg.Classifier.SeqLen == 0 {
		cfg.Classifier.SeqLen = 128
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "logs/audit.jsonl"
	}
}
