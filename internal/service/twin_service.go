package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"SugarMill.twin/internal/models"
	"SugarMill.twin/internal/scheduler"
	"SugarMill.twin/internal/telemetry"
)

// stationEfficiencyKey selects the efficiency band of the walker.
const stationEfficiencyKey = "efficiency_percentage"

// Config holds the twin's static setup.
type Config struct {
	MillID      string
	Interval    time.Duration
	Variation   float64
	Seed        uint64
	Stations    []models.ProcessStation
	SensorTypes []models.SensorType
	Boards      []telemetry.BoardSpec
}

// DefaultConfig returns the standard mill with a 5s refresh.
func DefaultConfig() Config {
	return Config{
		MillID:      "mill-1",
		Interval:    5 * time.Second,
		Variation:   2,
		Seed:        1,
		Stations:    models.DefaultStations(),
		SensorTypes: models.SensorTypes,
		Boards:      telemetry.DefaultBoards(),
	}
}

// MetricsRecorder is notified about ticks, summaries and sink failures.
type MetricsRecorder interface {
	scheduler.Observer
	ObserveSummary(models.Summary)
	SinkFailed(sink string)
}

type noopMetrics struct{}

func (noopMetrics) TickCompleted(string, time.Duration, error) {}
func (noopMetrics) ObserveSummary(models.Summary)              {}
func (noopMetrics) SinkFailed(string)                          {}

// TwinService owns the current snapshot of the mill and the schedulers that
// refresh it.
type TwinService struct {
	cfg     Config
	source  Source
	sinks   []Sink
	clock   scheduler.Clock
	logger  *slog.Logger
	metrics MetricsRecorder
	walker  *telemetry.Walker

	mu    sync.RWMutex
	state models.TwinState
	err   error

	subsMu  sync.Mutex
	subs    map[int]chan models.TwinState
	nextSub int

	twin       *scheduler.Scheduler
	boards     []*telemetry.Board
	boardErrs  map[string]error
	boardTasks []*scheduler.Scheduler
}

type Option func(*TwinService)

func WithSinks(sinks ...Sink) Option {
	return func(s *TwinService) { s.sinks = append(s.sinks, sinks...) }
}

func WithClock(c scheduler.Clock) Option {
	return func(s *TwinService) { s.clock = c }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *TwinService) { s.metrics = m }
}

func NewTwinService(cfg Config, source Source, logger *slog.Logger, opts ...Option) (*TwinService, error) {
	if source == nil {
		return nil, errors.New("twin service: source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, st := range cfg.Stations {
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("twin service: %w", err)
		}
	}

	s := &TwinService{
		cfg:       cfg,
		source:    source,
		clock:     scheduler.RealClock{},
		logger:    logger,
		metrics:   noopMetrics{},
		walker:    telemetry.NewWalker(cfg.Variation, telemetry.NewRand(cfg.Seed)),
		subs:      make(map[int]chan models.TwinState),
		boardErrs: make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}

	stations := make([]models.ProcessStation, len(cfg.Stations))
	copy(stations, cfg.Stations)
	s.state = models.TwinState{
		MillID:   cfg.MillID,
		Readings: []models.SensorReading{},
		Stations: stations,
		Summary:  telemetry.Summarize(nil, stations),
		Loading:  true,
	}

	twin, err := scheduler.New("twin", cfg.Interval, s.Tick,
		scheduler.WithClock(s.clock),
		scheduler.WithLogger(logger),
		scheduler.WithErrorHandler(s.recordError),
		scheduler.WithObserver(s.metrics),
	)
	if err != nil {
		return nil, err
	}
	s.twin = twin

	for i, spec := range cfg.Boards {
		board, err := telemetry.NewBoard(spec, telemetry.NewRand(cfg.Seed+uint64(i)+1))
		if err != nil {
			return nil, fmt.Errorf("twin service: %w", err)
		}
		name := board.Name()
		sched, err := scheduler.New("board:"+name, board.Interval(), func(context.Context) error {
			if err := board.Step(s.clock.Now()); err != nil {
				return err
			}
			s.recordBoardError(name, nil)
			return nil
		},
			scheduler.WithClock(s.clock),
			scheduler.WithLogger(logger),
			scheduler.WithErrorHandler(func(err error) { s.recordBoardError(name, err) }),
			scheduler.WithObserver(s.metrics),
		)
		if err != nil {
			return nil, err
		}
		s.boards = append(s.boards, board)
		s.boardTasks = append(s.boardTasks, sched)
	}
	return s, nil
}

// Start loads the first snapshot and starts every scheduler. A failing first
// load is recorded in the error slot and does not prevent ticking.
func (s *TwinService) Start(ctx context.Context) error {
	_ = s.twin.RunOnce(ctx)
	if err := s.twin.Start(ctx); err != nil {
		return err
	}
	for _, b := range s.boardTasks {
		if err := b.Start(ctx); err != nil {
			s.Stop()
			return err
		}
	}
	s.logger.Info("twin started", "mill", s.cfg.MillID, "stations", len(s.cfg.Stations), "boards", len(s.boards))
	return nil
}

// Stop halts every scheduler. It is safe to call more than once.
func (s *TwinService) Stop() {
	s.twin.Stop()
	for _, b := range s.boardTasks {
		b.Stop()
	}
}

// Running reports whether the twin scheduler is active.
func (s *TwinService) Running() bool {
	return s.twin.State() == scheduler.Running
}

// Tick refreshes readings and production, walks the efficiency of active
// stations and publishes the result. A station whose efficiency cannot be
// walked keeps its value and is reported in the returned error.
func (s *TwinService) Tick(ctx context.Context) error {
	s.mu.RLock()
	stations := make([]models.ProcessStation, len(s.state.Stations))
	copy(stations, s.state.Stations)
	s.mu.RUnlock()

	readings, err := s.source.Readings(ctx, models.StationIDs(stations), s.cfg.SensorTypes)
	if err != nil {
		return fmt.Errorf("generate readings: %w", err)
	}
	production, err := s.source.Production(ctx)
	if err != nil {
		return fmt.Errorf("generate production: %w", err)
	}

	now := s.clock.Now()
	var stationErrs []error
	for i := range stations {
		if stations[i].Status != models.StationActive {
			continue
		}
		next, err := s.walker.Step(stations[i].EfficiencyPercentage, stationEfficiencyKey)
		if err != nil {
			s.logger.Warn("station efficiency held", "station", stations[i].ID, "error", err)
			stationErrs = append(stationErrs, fmt.Errorf("station %s: %w", stations[i].ID, err))
			continue
		}
		stations[i].EfficiencyPercentage = next
		stations[i].UpdatedAt = now
	}

	summary := telemetry.Summarize(readings, stations)
	s.metrics.ObserveSummary(summary)

	s.mu.Lock()
	s.state = models.TwinState{
		MillID:     s.cfg.MillID,
		Readings:   readings,
		Stations:   stations,
		Production: &production,
		Summary:    summary,
		UpdatedAt:  now,
	}
	s.err = nil
	published := s.state.Clone()
	s.mu.Unlock()

	s.notify(published)
	return errors.Join(append(stationErrs, s.publish(ctx, published))...)
}

func (s *TwinService) publish(ctx context.Context, state models.TwinState) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, state); err != nil {
			s.metrics.SinkFailed(sink.Name())
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *TwinService) recordError(err error) {
	s.mu.Lock()
	s.err = err
	s.state.Error = err.Error()
	s.state.Loading = false
	published := s.state.Clone()
	s.mu.Unlock()
	s.notify(published)
}

func (s *TwinService) recordBoardError(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.boardErrs, name)
		return
	}
	s.boardErrs[name] = err
}

// State returns a copy of the current snapshot.
func (s *TwinService) State() models.TwinState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Err returns the failure of the last tick, or nil.
func (s *TwinService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Station returns one station with its current readings.
func (s *TwinService) Station(id string) (models.ProcessStation, []models.SensorReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.state.Stations {
		if st.ID == id {
			return st, telemetry.ReadingsForStation(s.state.Readings, id), true
		}
	}
	return models.ProcessStation{}, nil, false
}

// Boards returns a view of every metric board.
func (s *TwinService) Boards() []models.BoardView {
	out := make([]models.BoardView, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, s.boardView(b))
	}
	return out
}

// Board returns the named board.
func (s *TwinService) Board(name string) (models.BoardView, bool) {
	for _, b := range s.boards {
		if b.Name() == name {
			return s.boardView(b), true
		}
	}
	return models.BoardView{}, false
}

func (s *TwinService) boardView(b *telemetry.Board) models.BoardView {
	v := models.BoardView{
		Name:      b.Name(),
		Interval:  b.Interval().String(),
		Values:    b.Values(),
		UpdatedAt: b.UpdatedAt(),
	}
	s.mu.RLock()
	if err := s.boardErrs[b.Name()]; err != nil {
		v.Error = err.Error()
	}
	s.mu.RUnlock()
	return v
}

// Subscribe returns a channel that receives every published state. Slow
// subscribers only see the latest state. Received states are shared between
// subscribers and must not be modified. Call cancel to unsubscribe.
func (s *TwinService) Subscribe() (<-chan models.TwinState, func()) {
	ch := make(chan models.TwinState, 1)
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subsMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *TwinService) notify(state models.TwinState) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
