package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/danish-weather/internal/metrics"
	"github.com/i474232898/danish-weather/internal/store"
	"github.com/i474232898/danish-weather/internal/weather"
)

const (
	DefaultInterval = 10 * time.Minute
	DefaultTimeout  = 45 * time.Second
)

// Aggregator produces the side-by-side result for one coordinate.
type Aggregator interface {
	Aggregate(ctx context.Context, coord weather.Coordinate) weather.AggregatedResult
}

// SnapshotSaver receives the outcome of every cycle.
type SnapshotSaver interface {
	SaveSnapshot(snap store.Snapshot)
}

// Scheduler periodically refreshes the aggregated weather for one coordinate.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	aggregator Aggregator
	store      SnapshotSaver
	coord      weather.Coordinate
	interval   time.Duration
	timeout    time.Duration
}

// New creates a new Scheduler. Non-positive durations fall back to the defaults.
func New(coord weather.Coordinate, interval, timeout time.Duration, aggregator Aggregator, saver SnapshotSaver) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		aggregator: aggregator,
		store:      saver,
		coord:      coord,
		interval:   interval,
		timeout:    timeout,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first cycle runs immediately. A cycle that is still running when the next
// one is due makes the scheduler skip ahead rather than overlap.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("component", "scheduler").
		Str("coordinate", s.coord.Key()).
		Dur("interval", s.interval).
		Msg("refresh scheduled")

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single refresh cycle and stores its snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) store.Snapshot {
	id := uuid.New()
	logger := log.With().
		Str("component", "scheduler").
		Str("cycle", id.String()).
		Logger()

	logger.Debug().Msg("running weather refresh")
	start := time.Now()

	res := s.aggregator.Aggregate(ctx, s.coord)
	snap := store.Snapshot{
		ID:         id,
		Coordinate: s.coord,
		FetchedAt:  time.Now().UTC(),
		Result:     res,
	}
	if s.store != nil {
		s.store.SaveSnapshot(snap)
	}

	status := cycleStatus(res)
	metrics.RefreshCycles.WithLabelValues(status).Inc()
	logger.Info().
		Str("status", status).
		Dur("took", time.Since(start)).
		Msg("completed weather refresh")

	return snap
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func cycleStatus(res weather.AggregatedResult) string {
	switch {
	case res.Failed():
		return "failed"
	case res.YR == nil || res.DMI == nil:
		return "partial"
	default:
		return "ok"
	}
}
