package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	if cfg.Policy.TopK < 1 {
		return fmt.Errorf("policy.top_k must be at least 1, got %d", cfg.Policy.TopK)
	}
	if cfg.Policy.MinScore < 0 || cfg.Policy.MinScore > 1 {
		return fmt.Errorf("policy.min_score must be in [0,1], got %g", cfg.Policy.MinScore)
	}

	if cfg.Risk.LowThreshold < 0 || cfg.Risk.LowThreshold > 100 {
		return fmt.Errorf("risk.low_threshold must be in [0,100], got %d", cfg.Risk.LowThreshold)
	}
	if cfg.Risk.HighThreshold < 0 || cfg.Risk.HighThreshold > 100 {
		return fmt.Errorf("risk.high_threshold must be in [0,100], got %d", cfg.Risk.HighThreshold)
	}
	if cfg.Risk.LowThreshold >= cfg.Risk.HighThreshold {
		return fmt.Errorf("risk.low_threshold (%d) must be below risk.high_threshold (%d)",
			cfg.Risk.LowThreshold, cfg.Risk.HighThreshold)
	}

	if cfg.Classifier.Enabled {
		if strings.TrimSpace(cfg.Classifier.BundleDir) == "" {
			return errors.New("classifier enabled but bundle_dir is empty")
		}
		if cfg.Classifier.SeqLen < 8 {
			return fmt.Errorf("classifier.seq_len must be at least 8, got %d", cfg.Classifier.SeqLen)
		}
	}

	if cfg.Audit.Enabled && strings.TrimSpace(cfg.Audit.Path) == "" {
		return errors.New("audit enabled but path is empty")
	}

	if err := validateTelemetry(cfg); err != nil {
		return err
	}

	return nil
}

func validateTelemetry(cfg *Config) error {
	t := cfg.Telemetry
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
	}
	return nil
}
