package services

import (
	"context"
	"log/slog"
	"time"

	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/metrics"
	"project_gallery/internal/repository"
)

const sweepTimeout = 10 * time.Second

// DefaultSweepInterval используется, если интервал не задан или не положителен
const DefaultSweepInterval = 30 * time.Second

// Sweeper периодически удаляет просроченные ссылки посетителей.
// Ошибка одного цикла логируется и не останавливает цикл.
type Sweeper struct {
	log      *slog.Logger
	repo     repository.VisitorRepository
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(log *slog.Logger, repo repository.VisitorRepository, interval time.Duration) *Sweeper {
	log = log.With(slog.String("component", "visitor_sweeper"))

	if interval <= 0 {
		log.Warn("invalid sweep interval, using default",
			slog.Duration("configured", interval),
			slog.Duration("default", DefaultSweepInterval),
		)
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		log:      log,
		repo:     repo,
		interval: interval,
		now:      time.Now,
	}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run выполняет первую очистку сразу, затем раз в interval, пока не отменен ctx
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("sweeper started", slog.Duration("interval", s.interval))

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)

		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	_, _ = s.SweepOnce(ctx)
}

// SweepOnce удаляет все записи с time_out <= now и возвращает их количество
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	const op = "visitor_service.Sweeper.SweepOnce"

	removed, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		metrics.VisitorSweepErrors.Inc()
		s.log.Error("sweep failed", slog.String("op", op), sl.Err(err))

		return 0, err
	}

	metrics.VisitorsSwept.Add(float64(removed))

	if removed > 0 {
		s.log.Info("expired visitors removed", slog.Int64("count", removed))
	} else {
		s.log.Debug("no expired visitors")
	}

	return removed, nil
}
