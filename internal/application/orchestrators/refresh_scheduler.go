package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// RefreshSchedulerConfig holds configuration for the refresh scheduler.
type RefreshSchedulerConfig struct {
	Interval time.Duration // How often live cards are refreshed
	Enabled  bool
}

// DefaultRefreshSchedulerConfig returns the defaults used when nothing is configured.
func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
}

// ExecuteRefreshTick expires idle sessions and refreshes the rest.
// POST: every remaining session has a fetch in flight
func ExecuteRefreshTick(ctx context.Context, registry *CardRegistry) {
	dropped := registry.Sweep()
	refreshed := registry.RefreshAll(ctx)
	slog.Debug("card_refresh_tick", "refreshed", refreshed, "expired", dropped)
}

// StartRefreshScheduler starts a background goroutine that periodically refreshes live cards.
// PRE: Context is valid, registry is initialized
// POST: Goroutine started, returns cancel function
func StartRefreshScheduler(ctx context.Context, registry *CardRegistry, cfg RefreshSchedulerConfig) func() {
	if !cfg.Enabled || cfg.Interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ExecuteRefreshTick(ctx, registry)
			}
		}
	}()

	return cancel
}
