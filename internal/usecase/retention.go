package usecase

import (
	"context"
	"fmt"
	"time"
)

// SweepOldAlerts deletes alerts fetched more than the retention window ago.
// Idempotent: a second immediate sweep deletes nothing.
func (p *Pipeline) SweepOldAlerts(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-p.retentionAge)

	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}

	p.info("retention sweep done", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	return deleted, nil
}
