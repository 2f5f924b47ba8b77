package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// KeyPurger удаляет ключи идемпотентности, созданные раньше cutoff
type KeyPurger interface {
	PurgeIdempotencyKeys(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor периодически чистит устаревшие ключи идемпотентности
type Janitor struct {
	purger   KeyPurger
	logger   *zap.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewJanitor(purger KeyPurger, logger *zap.Logger, ttl, interval time.Duration) *Janitor {
	return &Janitor{
		purger:   purger,
		logger:   logger,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("Starting idempotency janitor",
		zap.Duration("ttl", j.ttl),
		zap.Duration("interval", j.interval),
	)

	j.wg.Add(1)
	go j.run(ctx)
}

func (j *Janitor) Stop() {
	j.logger.Info("Stopping idempotency janitor...")
	j.stopOnce.Do(func() { close(j.stop) })
	j.wg.Wait()
	j.logger.Info("Idempotency janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("janitor error", zap.Error(err))
			}
		}
	}
}

// Sweep выполняет один проход очистки
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	purged, err := j.purger.PurgeIdempotencyKeys(ctx, j.now().Add(-j.ttl))
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		j.logger.Info("Purged idempotency keys", zap.Int64("count", purged))
	}
	return purged, nil
}
