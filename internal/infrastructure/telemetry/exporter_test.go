package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTLPReader(t *testing.T) {
	t.Run("requires an endpoint", func(t *testing.T) {
		_, err := NewOTLPReader(context.Background(), ExporterConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoint")
	})

	t.Run("creates a periodic reader without dialing", func(t *testing.T) {
		reader, err := NewOTLPReader(context.Background(), ExporterConfig{
			CollectorEndpoint: "localhost:4317",
			Insecure:          true,
		})
		require.NoError(t, err)
		require.NotNil(t, reader)
		assert.NoError(t, reader.Shutdown(context.Background()))
	})
}
