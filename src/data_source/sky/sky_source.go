package sky

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"astrografia/src/logger"
	"astrografia/src/models"
)

const defaultInterval = 60 * time.Second

// ChartComputer is the part of the analysis facade the feed needs.
type ChartComputer interface {
	ComputeNow(ctx context.Context, now time.Time, lat, lon float64, tz string) (*models.MChart, error)
}

// Source recomputes the chart of the configured observatory on a fixed interval.
type Source struct {
	Config   *models.MConfig
	Facade   ChartComputer
	Logger   *logger.Logger
	Interval time.Duration

	now        func() time.Time
	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSource(cfg *models.MConfig, facade ChartComputer, log *logger.Logger) *Source {
	interval := time.Duration(cfg.Sky.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Source{
		Config:   cfg,
		Facade:   facade,
		Logger:   log,
		Interval: interval,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *Source) Name() string {
	return "sky"
}

// -----------------------------------------------------------------------------

// Start emits a snapshot right away and then once per interval until ctx ends
// or Stop is called.
func (s *Source) Start(parentCtx context.Context, outputChan chan<- *models.MSkySnapshot, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return fmt.Errorf("source %s is already running", s.Name())
	}
	if s.Facade == nil {
		return fmt.Errorf("source %s has no chart computer", s.Name())
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(ctx, outputChan, wg)
	s.Logger.Info("Started sky feed every %s for %.4f,%.4f (%s)",
		s.Interval, s.Config.Sky.Latitude, s.Config.Sky.Longitude, s.Config.Sky.Timezone)
	return nil
}

// -----------------------------------------------------------------------------

func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return fmt.Errorf("source %s is not running", s.Name())
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped sky feed")
	return nil
}

// -----------------------------------------------------------------------------

func (s *Source) runLoop(ctx context.Context, outputChan chan<- *models.MSkySnapshot, wg *sync.WaitGroup) {
	defer wg.Done()
	defer s.isRunning.Store(false)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	if !s.emit(ctx, outputChan) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.emit(ctx, outputChan) {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

// emit computes one snapshot. A failed computation is logged and skipped; it
// returns false only when the context is done.
func (s *Source) emit(ctx context.Context, outputChan chan<- *models.MSkySnapshot) bool {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.Logger.Warning("sky snapshot failed: %v", err)
		return true
	}

	select {
	case outputChan <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

// -----------------------------------------------------------------------------

// Snapshot computes the current sky once.
func (s *Source) Snapshot(ctx context.Context) (*models.MSkySnapshot, error) {
	now := s.now()
	started := time.Now()

	chart, err := s.Facade.ComputeNow(ctx, now, s.Config.Sky.Latitude, s.Config.Sky.Longitude, s.Config.Sky.Timezone)
	if err != nil {
		return nil, err
	}
	return &models.MSkySnapshot{
		Timestamp:      now.Unix(),
		Chart:          chart,
		ComputeSeconds: time.Since(started).Seconds(),
	}, nil
}
