package usage

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically removes usage rows past their retention expiry.
// Admission never reads expiry, so a late or missed sweep is harmless.
type Janitor struct {
	repo     Repository
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(repo Repository, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{repo: repo, interval: interval, logger: logger}
}

// Run sweeps on a fixed interval until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.repo.PurgeExpired(ctx)
			if err != nil {
				j.logger.Error("purging expired usage records", "error", err)
				continue
			}
			if n > 0 {
				j.logger.Info("purged expired usage records", "removed", n)
			}
		}
	}
}
