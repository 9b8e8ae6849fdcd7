package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	_, err := NewBackend(Config{})
	require.Error(t, err)
}

func TestTags_Sorted(t *testing.T) {
	got := tags(metrics.Labels{"kind": "read", "job": "formatter"})
	assert.Equal(t, []string{"job:formatter", "kind:read"}, got)
	assert.Nil(t, tags(nil))
}

func TestBackend_ZeroValueIsNoop(t *testing.T) {
	var b Backend
	b.IncCounter(metrics.RowsTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
	assert.NoError(t, b.Flush())
}

func TestBackend_SendsCount(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Namespace: "nutrition."})
	require.NoError(t, err)

	b.IncCounter(metrics.RowsTotal, 3, metrics.Labels{"job": "formatter", "kind": "read"})
	require.NoError(t, b.Flush())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 4096)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	packet := string(buf[:n])
	assert.True(t, strings.Contains(packet, "nutrition."+metrics.RowsTotal), packet)
	assert.Contains(t, packet, "kind:read")
}
