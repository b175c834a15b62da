package server

import (
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/response"
)

// Metrics holds server runtime metrics
type Metrics struct {
	RequestsTotal  atomic.Int64
	Responses2xx   atomic.Int64
	Partial        atomic.Int64 // 206, also counted in Responses2xx
	NotFound       atomic.Int64
	Unsatisfiable  atomic.Int64
	Errors4xx      atomic.Int64
	Errors5xx      atomic.Int64
	BytesServed    atomic.Int64
	TotalLatencyNs atomic.Int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records a completed request
func (m *Metrics) RecordRequest(code response.StatusCode, bodyBytes int64, duration time.Duration) {
	m.RequestsTotal.Add(1)
	m.TotalLatencyNs.Add(duration.Nanoseconds())
	m.BytesServed.Add(bodyBytes)

	switch {
	case code.IsSuccess():
		m.Responses2xx.Add(1)
		if code == response.StatusPartialContent {
			m.Partial.Add(1)
		}
	case code.IsClientError():
		m.Errors4xx.Add(1)
		switch code {
		case response.StatusNotFound:
			m.NotFound.Add(1)
		case response.StatusRequestedRangeNotSatisfiable:
			m.Unsatisfiable.Add(1)
		}
	case code.IsServerError():
		m.Errors5xx.Add(1)
	}
}

// AverageLatency returns average request latency
func (m *Metrics) AverageLatency() time.Duration {
	totalReqs := m.RequestsTotal.Load()
	if totalReqs == 0 {
		return 0
	}
	return time.Duration(m.TotalLatencyNs.Load() / totalReqs)
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	RequestsTotal  int64
	Responses2xx   int64
	Partial        int64
	NotFound       int64
	Unsatisfiable  int64
	Errors4xx      int64
	Errors5xx      int64
	BytesServed    int64
	AverageLatency time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RequestsTotal:  m.RequestsTotal.Load(),
		Responses2xx:   m.Responses2xx.Load(),
		Partial:        m.Partial.Load(),
		NotFound:       m.NotFound.Load(),
		Unsatisfiable:  m.Unsatisfiable.Load(),
		Errors4xx:      m.Errors4xx.Load(),
		Errors5xx:      m.Errors5xx.Load(),
		BytesServed:    m.BytesServed.Load(),
		AverageLatency: m.AverageLatency(),
	}
}
