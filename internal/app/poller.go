package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultRevalidateInterval = 30 * time.Second
	maxBackoff                = 5 * time.Minute
)

// FallbackEvicter drops cached categories that were served from fallback
// data. *catalog.Catalog satisfies it.
type FallbackEvicter interface {
	EvictFallbacks() int
}

// StartRevalidator launches a background goroutine that periodically evicts
// fallback cache entries so the next fetch of those categories retries the
// gallery service. Idle rounds back off exponentially up to maxBackoff. It
// returns immediately.
func StartRevalidator(ctx context.Context, target FallbackEvicter, interval time.Duration, logger logrus.FieldLogger) {
	if interval <= 0 {
		interval = defaultRevalidateInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("component", "revalidator")

	go func() {
		idle := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if n := target.EvictFallbacks(); n > 0 {
				log.WithField("categories", n).Info("evicted fallback data")
				idle = 0
			} else {
				idle++
			}
			timer.Reset(calculateBackoff(idle, interval))
		}
	}()
}

// calculateBackoff returns base doubled once per idle round, capped at
// maxBackoff.
func calculateBackoff(idle int, base time.Duration) time.Duration {
	if idle <= 0 {
		return base
	}
	d := base
	for i := 0; i < idle; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
