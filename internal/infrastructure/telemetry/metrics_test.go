package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/zaptest"
)

func TestMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("posledger"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMeterProvider_Enabled(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := NewMeterProvider(MetricsConfig{Enabled: true, ServiceName: "posledger"}, zaptest.NewLogger(t), reader)
	require.NoError(t, err)
	require.True(t, mp.IsEnabled())

	counter, err := NewCounter(mp.Meter("posledger"), "pos_test_total", "test counter", "{n}")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)
	counter.Inc(context.Background())

	assert.Equal(t, int64(4), sumOf(t, collect(t, reader), "pos_test_total"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}
