package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	m := New()

	m.Session(EventLogin, nil)
	m.Session(EventLogin, nil)
	m.Session(EventLogin, errors.New("bad password"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionEvents.WithLabelValues(EventLogin, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionEvents.WithLabelValues(EventLogin, OutcomeFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionEvents.WithLabelValues(EventRefresh, OutcomeSuccess)))
}

func TestGuardRejected(t *testing.T) {
	m := New()
	m.GuardRejected("missing_token")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardRejections.WithLabelValues("missing_token")))
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/healthz", "200").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["rms_http_requests_total"])
	assert.True(t, names["go_goroutines"])
}
