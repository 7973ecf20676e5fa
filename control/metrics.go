// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for connection-level monitoring.
// Counters are kept in a thread-safe map with dynamic registration and are
// fed by streamers through the frame observer hook.

package control

import (
	"sync"
	"time"

	"github.com/momentics/layer8-ws/api"
)

// Metric keys maintained by ObserveFrame.
const (
	MetricFramesIn     = "frames.inbound"
	MetricFramesOut    = "frames.outbound"
	MetricBytesIn      = "bytes.inbound"
	MetricBytesOut     = "bytes.outbound"
	MetricEncryptedIn  = "frames.inbound.encrypted"
	MetricEncryptedOut = "frames.outbound.encrypted"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

var _ api.FrameObserver = (*MetricsRegistry)(nil)

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments an integer counter, creating it when absent. A key holding
// a non-counter value is overwritten.
func (mr *MetricsRegistry) Add(key string, delta uint64) {
	mr.mu.Lock()
	mr.add(key, delta)
	mr.updated = time.Now()
	mr.mu.Unlock()
}

func (mr *MetricsRegistry) add(key string, delta uint64) {
	cur, _ := mr.metrics[key].(uint64)
	mr.metrics[key] = cur + delta
}

// Counter returns the value of an integer counter, or zero.
func (mr *MetricsRegistry) Counter(key string) uint64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, _ := mr.metrics[key].(uint64)
	return v
}

// ObserveFrame implements api.FrameObserver.
func (mr *MetricsRegistry) ObserveFrame(ev api.FrameEvent) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if ev.Direction == api.Outbound {
		mr.add(MetricFramesOut, 1)
		mr.add(MetricBytesOut, uint64(ev.WireBytes))
		if ev.Encrypted {
			mr.add(MetricEncryptedOut, 1)
		}
	} else {
		mr.add(MetricFramesIn, 1)
		mr.add(MetricBytesIn, uint64(ev.WireBytes))
		if ev.Encrypted {
			mr.add(MetricEncryptedIn, 1)
		}
	}
	mr.updated = time.Now()
}

// Updated returns the time of the last change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
