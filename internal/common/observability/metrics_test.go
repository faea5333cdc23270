package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredNames(t *testing.T, reg *promclient.Registry) []string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

func containsPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func TestObservability_RecordsIntoRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("activities-test", Config{Registerer: reg})
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordOperation(ctx, "signup", "success")
	obs.RecordOperationDuration(ctx, "signup", 3*time.Millisecond)
	obs.RecordEvent(ctx, "redis", "success")

	names := gatheredNames(t, reg)
	assert.True(t, containsPrefix(names, "registry_operations"), "names: %v", names)
	assert.True(t, containsPrefix(names, "registry_operation_duration"), "names: %v", names)
	assert.True(t, containsPrefix(names, "registry_events"), "names: %v", names)
}

func TestObservability_StartSpanWithoutTracing(t *testing.T) {
	obs := New("activities-test", Config{Registerer: promclient.NewRegistry()})
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "activities.signup")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	var obs Observability
	assert.NotPanics(t, func() {
		obs.RecordOperation(context.Background(), "list", "success")
		obs.RecordEvent(context.Background(), "nats", "failure")
		obs.Shutdown()
	})
}
