package notify

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/record"

	"git-sync-operator/internal/metrics"
)

func TestEventSink(t *testing.T) {
	recorder := record.NewFakeRecorder(10)
	sink := NewEventSink(recorder)

	require.NoError(t, sink.Send(context.Background(), testEvent()))
	assert.Equal(t, "event", sink.Name())

	select {
	case ev := <-recorder.Events:
		assert.Equal(t, "Normal Deployed Rolled out revision def5678", ev)
	default:
		t.Fatal("expected an event")
	}
}

func TestMetricsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewMetricsSink(metrics.New(reg))

	require.NoError(t, sink.Send(context.Background(), testEvent()))
	require.NoError(t, sink.Send(context.Background(), testEvent()))

	count, err := testutil.GatherAndCount(reg, "gitsync_deployments_completed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "metrics", sink.Name())
}
