package relay

import (
	"sync/atomic"
	"time"
)

// Metrics tracks forwarding calls to the admin panel
type Metrics struct {
	forwards        atomic.Int64
	upstreamErrors  atomic.Int64
	transportErrors atomic.Int64
	latencyNanos    atomic.Int64
}

// Stats is a point-in-time copy of Metrics.
type Stats struct {
	Forwards         int64   `json:"forwards"`
	UpstreamErrors   int64   `json:"upstream_errors"`
	TransportErrors  int64   `json:"transport_errors"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
}

func (m *Metrics) record(duration time.Duration, upstreamFailed, transportFailed bool) {
	m.forwards.Add(1)
	m.latencyNanos.Add(duration.Nanoseconds())
	if upstreamFailed {
		m.upstreamErrors.Add(1)
	}
	if transportFailed {
		m.transportErrors.Add(1)
	}
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() Stats {
	s := Stats{
		Forwards:        m.forwards.Load(),
		UpstreamErrors:  m.upstreamErrors.Load(),
		TransportErrors: m.transportErrors.Load(),
	}
	if s.Forwards > 0 {
		s.AverageLatencyMs = float64(m.latencyNanos.Load()) / float64(s.Forwards) / 1e6
	}
	return s
}

// ErrorRate returns failed forwards as a percentage
func (s Stats) ErrorRate() float64 {
	if s.Forwards == 0 {
		return 0
	}
	return float64(s.UpstreamErrors+s.TransportErrors) / float64(s.Forwards) * 100
}
