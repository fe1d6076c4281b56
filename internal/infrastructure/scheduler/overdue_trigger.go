package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidInterval is returned when the trigger interval is not positive
var ErrInvalidInterval = errors.New("sweep interval must be positive")

// InstallmentSweeper marks open installments overdue as of now
type InstallmentSweeper interface {
	RefreshOverdue(ctx context.Context, now time.Time) (int, error)
}

// OverdueTriggerConfig holds configuration for the overdue trigger
type OverdueTriggerConfig struct {
	// Interval is how often open installments are checked
	Interval time.Duration
	// RunOnStart sweeps once immediately when the trigger starts
	RunOnStart bool
}

// DefaultOverdueTriggerConfig returns an hourly sweep that also runs at start
func DefaultOverdueTriggerConfig() OverdueTriggerConfig {
	return OverdueTriggerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
	}
}

// OverdueTrigger periodically sweeps installments whose due date has passed
type OverdueTrigger struct {
	config  OverdueTriggerConfig
	sweeper InstallmentSweeper
	clock   func() time.Time
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
}

// NewOverdueTrigger creates a new overdue trigger
func NewOverdueTrigger(config OverdueTriggerConfig, sweeper InstallmentSweeper, logger *zap.Logger) (*OverdueTrigger, error) {
	if config.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &OverdueTrigger{
		config:  config,
		sweeper: sweeper,
		clock:   time.Now,
		logger:  logger.Named("overdue_trigger"),
	}, nil
}

// Start starts the trigger loop. Starting a running trigger is a no-op.
func (t *OverdueTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Overdue trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop stops the trigger and waits for a running sweep to finish, or for
// ctx to expire.
func (t *OverdueTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Overdue trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastRun returns when the last sweep completed, zero if none has
func (t *OverdueTrigger) LastRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun
}

func (t *OverdueTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.Sweep(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(ctx)
		}
	}
}

// Sweep runs one sweep now. Failures are logged; the next tick retries.
func (t *OverdueTrigger) Sweep(ctx context.Context) {
	now := t.clock()
	changed, err := t.sweeper.RefreshOverdue(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Error("Overdue sweep failed",
				zap.Int("changed", changed),
				zap.Error(err),
			)
		}
		return
	}

	t.mu.Lock()
	t.lastRun = now
	t.mu.Unlock()

	t.logger.Debug("Overdue sweep finished", zap.Int("changed", changed))
}
