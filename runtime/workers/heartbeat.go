package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-relay/observability"
	"chat-relay/runtime"
)

// Heartbeat periodically reports process health and relay throughput to
// the logger: RSS, CPU, active client count, and the delivery counters.
type Heartbeat struct {
	log      *slog.Logger
	registry *runtime.Registry
	stats    *observability.Stats
	interval time.Duration
}

func NewHeartbeat(
	log *slog.Logger,
	registry *runtime.Registry,
	stats *observability.Stats,
	interval time.Duration,
) *Heartbeat {
	return &Heartbeat{log: log, registry: registry, stats: stats, interval: interval}
}

func (w *Heartbeat) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rssMb, cpuPercent, err := selfStats(proc)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			view := w.stats.Snapshot()
			w.log.Info("Relay heartbeat",
				"active_clients", w.registry.ActiveCount(),
				"rss_mb", rssMb,
				"cpu_percent", cpuPercent,
				"broadcasts", view.Broadcasts,
				"privates", view.Privates,
				"private_misses", view.PrivateMisses,
				"roster_updates", view.RosterUpdates,
				"sink_errors", view.SinkErrors,
			)
		}
	}
}

func selfStats(proc *process.Process) (rssMb uint64, cpuPercent float64, err error) {
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err = proc.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS / 1024 / 1024, cpuPercent, nil
}
