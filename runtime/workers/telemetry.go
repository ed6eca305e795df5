package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"relay-hub/observability"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs the hub counters together with the
// process's own CPU and memory usage.
type TelemetryWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitor: monitor, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.report(proc)
		}
	}
}

func (w *TelemetryWorker) report(proc *process.Process) {
	stats := w.monitor.Snapshot()

	attrs := []any{
		"uptime_s", stats.UptimeSeconds,
		"live_connections", stats.LiveConnections,
		"sessions_total", stats.SessionsTotal,
		"chats_routed", stats.ChatsRouted,
		"signals_routed", stats.SignalsRouted,
		"delivery_drops", stats.DeliveryDrops,
		"recorder_drops", stats.RecorderDrops,
		"persist_failures", stats.PersistFailures,
		"goroutines", stats.NumGoroutine,
	}

	if memInfo, err := proc.MemoryInfo(); err == nil {
		attrs = append(attrs, "rss_mb", memInfo.RSS/1024/1024)
	}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		attrs = append(attrs, "cpu_percent", cpuPercent)
	}

	w.log.Info("Telemetry", attrs...)
}
