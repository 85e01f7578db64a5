package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DeliveryPruner deletes delivery log rows created before a unix timestamp.
type DeliveryPruner interface {
	DeleteOlderThan(ctx context.Context, ts int64) (int64, error)
}

// PruneDeliveries removes log rows older than retention.
func PruneDeliveries(ctx context.Context, repo DeliveryPruner, retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention).Unix()
	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", deleted).Int64("cutoff", cutoff).Msg("pruned delivery log")
	return deleted, nil
}

// RunPruner prunes every interval until ctx is done.
func RunPruner(ctx context.Context, repo DeliveryPruner, retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := PruneDeliveries(ctx, repo, retention, time.Now()); err != nil {
			log.Error().Err(err).Msg("error pruning delivery log")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
