package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled)
	assert.NotNil(t, p.Tracer())

	// Instruments exist and recording is a no-op, not a panic.
	p.RecordAnalysis(context.Background(), "ALLOW", 2, 1.5)
	p.Shutdown(context.Background())
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	assert.NotNil(t, p.Tracer())
	p.RecordAnalysis(context.Background(), "BLOCK", 0, 0)
	p.Shutdown(context.Background())
}

func TestRejectsUnknownProtocol(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:  true,
		Endpoint: "localhost:4317",
		Protocol: "udp",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown telemetry protocol")
}
