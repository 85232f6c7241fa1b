package otelcol

import (
	"testing"

	"rewardgate/pkg/config"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx/fxtest"
)

func TestProvideTracerProviderWithoutAddrIsNoop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	tp, err := ProvideTracerProvider(lc, &config.Config{})
	require.NoError(t, err)
	require.IsType(t, noop.TracerProvider{}, tp)
}
