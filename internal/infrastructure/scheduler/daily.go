package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"SeapMonitor/internal/ports"
)

// State names the scheduler lifecycle phases.
type State string

const (
	StateIdle    State = "idle"
	StateArmed   State = "armed"
	StateRunning State = "running"
)

// DailyScheduler arms a one-shot timer for the next occurrence of a
// fixed local wall-clock hour, then repeats every 24 hours. One instance
// per process; the design assumes the job finishes well inside a day.
type DailyScheduler struct {
	mu       sync.Mutex
	state    State
	stop     chan struct{}
	hour     int
	location *time.Location
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds an idle scheduler firing at the given local
// hour in the given fixed-offset location.
func NewDailyScheduler(hour int, location *time.Location, logger *slog.Logger) *DailyScheduler {
	return &DailyScheduler{
		state:    StateIdle,
		hour:     hour,
		location: location,
		interval: 24 * time.Hour,
		now:      time.Now,
		logger:   logger,
	}
}

// State reports the current lifecycle phase.
func (d *DailyScheduler) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// NextRunIn computes the delay from now until the next trigger. A
// trigger time already passed today schedules for tomorrow.
func (d *DailyScheduler) NextRunIn(now time.Time) time.Duration {
	local := now.In(d.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, 0, 0, 0, d.location)
	if local.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}

// Start arms the one-shot timer. Calling Start on a non-idle scheduler
// is a logged no-op; only one timer chain ever exists.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateIdle {
		d.log().Warn("scheduler already started, ignoring", "state", string(d.state))
		return nil
	}

	delay := d.NextRunIn(d.now())
	stop := make(chan struct{})
	d.stop = stop
	d.state = StateArmed
	d.log().Info("scheduler armed", "next_run_in", delay.Round(time.Second).String())

	timer := time.NewTimer(delay)
	go d.run(ctx, timer, stop, job)

	return nil
}

// Stop cancels the recurring phase and returns the scheduler to idle.
// An armed one-shot that has not fired yet still fires once; it will
// not re-arm the interval afterwards.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.state = StateIdle
	d.log().Info("scheduler stopped")
	return nil
}

func (d *DailyScheduler) run(ctx context.Context, timer *time.Timer, stop chan struct{}, job func(time.Time)) {
	// The pending one-shot is deliberately not cancellable via Stop;
	// only context cancellation tears it down early.
	select {
	case t := <-timer.C:
		d.markRunning()
		job(t)
	case <-ctx.Done():
		timer.Stop()
		d.reset()
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case t := <-ticker.C:
			job(t)
		case <-stop:
			return
		case <-ctx.Done():
			d.reset()
			return
		}
	}
}

func (d *DailyScheduler) markRunning() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateArmed {
		d.state = StateRunning
	}
}

func (d *DailyScheduler) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateIdle
	d.stop = nil
}

func (d *DailyScheduler) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.logger
}
