//go:build linux

package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/mibtop/pkg/sampler"
)

func TestMetrics_ObserveCycle(t *testing.T) {
	m := New()

	m.ObserveCycle(sampler.CycleStats{CPULines: 5, Processes: 120, Failures: 2, Duration: 10 * time.Millisecond})
	m.ObserveCycle(sampler.CycleStats{CPULines: 5, Processes: 118, Failures: 1, SnapshotFailed: true, RootFailed: true})
	m.ObserveSinkError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles))
	assert.Equal(t, 118.0, testutil.ToFloat64(m.processesScanned))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.cpuLines))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.readFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rootFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(m.cycleDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveCycle(sampler.CycleStats{Processes: 3})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mibtop_cycles_total 1")
	assert.Contains(t, string(body), "mibtop_processes_scanned 3")
	assert.Contains(t, string(body), "go_goroutines")
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestMetrics_Serve(t *testing.T) {
	m := New()
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(b), "mibtop_cycles_total")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestMetrics_ServeBadAddr(t *testing.T) {
	err := New().Serve(context.Background(), "256.0.0.1:bad")
	require.Error(t, err)
}
