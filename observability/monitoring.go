// Package observability aggregates runtime counters for the stats
// endpoint and the periodic telemetry worker.
package observability

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// Stats is the snapshot served by /api/stats.
type Stats struct {
	UptimeSeconds    int64  `json:"uptime_seconds"`
	LiveConnections  int64  `json:"live_connections"`
	SessionsTotal    uint64 `json:"sessions_total"`
	ChatsRouted      uint64 `json:"chats_routed"`
	SignalsRouted    uint64 `json:"signals_routed"`
	DeliveryDrops    uint64 `json:"delivery_drops"`
	RecorderDrops    uint64 `json:"recorder_drops"`
	PersistFailures  uint64 `json:"persist_failures"`
	DecodeFailures   uint64 `json:"decode_failures"`
	SpoofRejections  uint64 `json:"spoof_rejections"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
	NumGoroutine     int    `json:"num_goroutine"`
}

// Monitor collects hub-wide telemetry. All counters are atomic; the
// struct is shared by every session, the router and the recorder.
type Monitor struct {
	log     *slog.Logger
	started time.Time

	LiveConnections atomic.Int64
	SessionsTotal   atomic.Uint64
	ChatsRouted     atomic.Uint64
	SignalsRouted   atomic.Uint64
	DeliveryDrops   atomic.Uint64
	RecorderDrops   atomic.Uint64
	PersistFailures atomic.Uint64
	DecodeFailures  atomic.Uint64
	SpoofRejections atomic.Uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log, started: time.Now()}
}

func (m *Monitor) SessionOpened() {
	m.LiveConnections.Add(1)
	m.SessionsTotal.Add(1)
}

func (m *Monitor) SessionClosed() {
	m.LiveConnections.Add(-1)
}

// Snapshot captures the current counters plus process memory stats.
func (m *Monitor) Snapshot() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		UptimeSeconds:   int64(time.Since(m.started).Seconds()),
		LiveConnections: m.LiveConnections.Load(),
		SessionsTotal:   m.SessionsTotal.Load(),
		ChatsRouted:     m.ChatsRouted.Load(),
		SignalsRouted:   m.SignalsRouted.Load(),
		DeliveryDrops:   m.DeliveryDrops.Load(),
		RecorderDrops:   m.RecorderDrops.Load(),
		PersistFailures: m.PersistFailures.Load(),
		DecodeFailures:  m.DecodeFailures.Load(),
		SpoofRejections: m.SpoofRejections.Load(),
		AllocMemMb:      mem.Alloc / 1024 / 1024,
		NumGC:           mem.NumGC,
		NumGoroutine:    runtime.NumGoroutine(),
	}
}
