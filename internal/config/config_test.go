package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Policy.TopK)
	assert.Equal(t, 0.05, cfg.Policy.MinScore)
	assert.Equal(t, 30, cfg.Risk.LowThreshold)
	assert.Equal(t, 70, cfg.Risk.HighThreshold)
	assert.Equal(t, 128, cfg.Classifier.SeqLen)
	assert.False(t, cfg.Telemetry.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9000"
policy:
  top_k: 3
risk:
  high_threshold: 80
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Policy.TopK)
	assert.Equal(t, 0.05, cfg.Policy.MinScore, "unset min_score falls back")
	assert.Equal(t, 30, cfg.Risk.LowThreshold)
	assert.Equal(t, 80, cfg.Risk.HighThreshold)
	require.NoError(t, Validate(cfg))
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = " " },
			want:   "server.addr",
		},
		{
			name:   "top_k below one",
			mutate: func(c *Config) { c.Policy.TopK = -1 },
			want:   "top_k",
		},
		{
			name:   "min_score out of range",
			mutate: func(c *Config) { c.Policy.MinScore = 1.5 },
			want:   "min_score",
		},
		{
			name:   "inverted risk thresholds",
			mutate: func(c *Config) { c.Risk.LowThreshold = 80; c.Risk.HighThreshold = 70 },
			want:   "low_threshold",
		},
		{
			name:   "classifier enabled without bundle",
			mutate: func(c *Config) { c.Classifier.Enabled = true; c.Classifier.BundleDir = "" },
			want:   "bundle_dir",
		},
		{
			name:   "audit enabled without path",
			mutate: func(c *Config) { c.Audit.Enabled = true; c.Audit.Path = "" },
			want:   "path",
		},
		{
			name:   "telemetry enabled without endpoint",
			mutate: func(c *Config) { c.Telemetry.Enabled = true },
			want:   "endpoint",
		},
		{
			name: "telemetry bad protocol",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = "localhost:4317"
				c.Telemetry.Protocol = "udp"
			},
			want: "protocol",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	require.NoError(t, Validate(base()))
}
