// Package scheduler runs a task on a fixed interval with an explicit
// start/stop lifecycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("scheduler already running")
	ErrTaskPanicked   = errors.New("scheduler task panicked")
)

// State is the lifecycle state of a Scheduler.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Task is the work performed on every tick.
type Task func(ctx context.Context) error

// Observer is notified after every tick.
type Observer interface {
	TickCompleted(name string, took time.Duration, err error)
}

// Scheduler runs Task every interval. Ticks never overlap: the next timer is
// armed only after the previous tick returned.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
	clock    Clock
	logger   *slog.Logger
	onError  func(error)
	observer Observer

	lifecycle sync.Mutex // serialises Start and Stop
	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	done      chan struct{}

	ticks atomic.Uint64
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithErrorHandler receives every failed tick, including recovered panics.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

func New(name string, interval time.Duration, task Task, opts ...Option) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler %s: interval must be positive, got %s", name, interval)
	}
	if task == nil {
		return nil, fmt.Errorf("scheduler %s: task is required", name)
	}
	s := &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
		clock:    RealClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scheduler) Name() string            { return s.name }
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Ticks returns how many ticks have completed.
func (s *Scheduler) Ticks() uint64 { return s.ticks.Load() }

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start arms the timer. The loop ends when Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = Running
	go s.loop(loopCtx, s.done)
	s.logger.Info("scheduler started", "name", s.name, "interval", s.interval)
	return nil
}

// Stop cancels the timer and waits for an in-flight tick to finish. No tick
// runs after Stop returns. Stopping an idle scheduler is a no-op. Stop must
// not be called from inside the task.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.state = Idle
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	s.logger.Info("scheduler stopped", "name", s.name, "ticks", s.ticks.Load())
}

// RunOnce runs the task immediately with the same error handling as a tick.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runTick(ctx)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		t := s.clock.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			s.markIdle(done)
			return
		case <-t.C():
		}
		if ctx.Err() != nil {
			s.markIdle(done)
			return
		}
		_ = s.runTick(ctx)
	}
}

// markIdle handles a parent context cancellation that did not go through Stop.
func (s *Scheduler) markIdle(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.state = Idle
	}
}

func (s *Scheduler) runTick(ctx context.Context) (err error) {
	start := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		s.ticks.Add(1)
		if err != nil {
			s.logger.Warn("tick failed", "name", s.name, "err", err)
			if s.onError != nil {
				s.onError(err)
			}
		}
		if s.observer != nil {
			s.observer.TickCompleted(s.name, s.clock.Now().Sub(start), err)
		}
	}()
	return s.task(ctx)
}
