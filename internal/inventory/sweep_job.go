package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
)

// Adjustments older than this are assumed orphaned by a crash, not in flight.
const sweepGracePeriod = 5 * time.Minute

// SweepJob finishes adjustment intents left pending by a crash mid-cascade.
// It resumes from each intent's consumed-units watermark, so re-running it is
// safe.
type SweepJob struct {
	repo       Repository
	reconciler *Reconciler
	logg       *logger.Logger
}

// NewSweepJob builds the pending-adjustment sweep.
func NewSweepJob(repo Repository, reconciler *Reconciler, logg *logger.Logger) (*SweepJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SweepJob{repo: repo, reconciler: reconciler, logg: logg}, nil
}

// Name identifies the job in logs.
func (j *SweepJob) Name() string {
	return "inventory_adjustment_sweep"
}

// Run resumes every stale pending adjustment once.
func (j *SweepJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-sweepGracePeriod)
	stale, err := j.repo.ListPendingAdjustments(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending adjustments: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	for i := range stale {
		adjustment := stale[i]
		jctx := j.logg.WithFields(ctx, map[string]any{
			"adjustment_id": adjustment.ID.String(),
			"order_id":      adjustment.OrderID.String(),
			"spice":         adjustment.SpiceName,
		})
		j.logg.Warn(jctx, "resuming orphaned inventory adjustment")

		result, err := j.reconciler.Resume(ctx, &adjustment)
		if err != nil {
			j.logg.Error(jctx, "failed to resume inventory adjustment", err)
			continue
		}
		if result.Short() {
			j.logg.Warn(j.logg.WithField(jctx, "shortfall_units", result.ShortfallUnits),
				"packaged stock exhausted while resuming adjustment")
		}
	}
	return nil
}

// RunEvery blocks, executing the sweep on the given interval until ctx ends.
func (j *SweepJob) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logg.Error(ctx, "inventory sweep failed", err)
			}
		}
	}
}
