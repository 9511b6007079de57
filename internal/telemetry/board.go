package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// BoardSpec describes a set of metrics animated by the walker.
// When Fields is empty every key uses the key-name bounds of BoundsFor and
// the shared Variation; otherwise each field walks inside its own band.
type BoardSpec struct {
	Name      string                 `json:"name"`
	Interval  time.Duration          `json:"interval"`
	Variation float64                `json:"variation,omitempty"`
	Initial   map[string]float64     `json:"initial"`
	Fields    map[string]FieldBounds `json:"fields,omitempty"`
}

// Keyed reports whether the board uses key-name bounds.
func (s BoardSpec) Keyed() bool {
	return len(s.Fields) == 0
}

func (s BoardSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("board name is required")
	}
	if s.Interval <= 0 {
		return fmt.Errorf("board %s: interval must be positive", s.Name)
	}
	if s.Keyed() {
		return nil
	}
	for k, f := range s.Fields {
		if f.Min > f.Max {
			return &InvalidBoundsError{Key: s.Name + "." + k, Lower: f.Min, Upper: f.Max}
		}
		if _, ok := s.Initial[k]; !ok {
			return fmt.Errorf("board %s: field %q has no initial value", s.Name, k)
		}
	}
	for k := range s.Initial {
		if _, ok := s.Fields[k]; !ok {
			return fmt.Errorf("board %s: value %q has no bounds", s.Name, k)
		}
	}
	return nil
}

// Board holds the current values of a BoardSpec.
type Board struct {
	spec   BoardSpec
	walker *Walker

	mu        sync.RWMutex
	values    map[string]float64
	updatedAt time.Time
}

func NewBoard(spec BoardSpec, r Rand) (*Board, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(spec.Initial))
	for k, v := range spec.Initial {
		values[k] = v
	}
	return &Board{spec: spec, walker: NewWalker(spec.Variation, r), values: values}, nil
}

func (b *Board) Name() string            { return b.spec.Name }
func (b *Board) Interval() time.Duration { return b.spec.Interval }

// Step advances every value by one walk step. On error the previous values are kept.
func (b *Board) Step(now time.Time) error {
	b.mu.RLock()
	prev := b.values
	b.mu.RUnlock()

	var next map[string]float64
	if b.spec.Keyed() {
		var err error
		if next, err = b.walker.StepAll(prev); err != nil {
			return fmt.Errorf("board %s: %w", b.spec.Name, err)
		}
	} else {
		next = make(map[string]float64, len(prev))
		for _, k := range sortedKeys(prev) {
			v, err := b.walker.StepField(k, prev[k], b.spec.Fields[k])
			if err != nil {
				return fmt.Errorf("board %s: %w", b.spec.Name, err)
			}
			next[k] = v
		}
	}

	b.mu.Lock()
	b.values = next
	b.updatedAt = now
	b.mu.Unlock()
	return nil
}

// Values returns a copy of the current values.
func (b *Board) Values() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// UpdatedAt is the time of the last successful step.
func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// SensorBundle is the line-side gauge cluster.
func SensorBundle() BoardSpec {
	return BoardSpec{
		Name:     "sensors",
		Interval: 1500 * time.Millisecond,
		Initial: map[string]float64{
			"temperature": 85, "pressure": 2.4, "vibration": 0.3,
			"efficiency": 92, "throughput": 145, "quality": 98.5,
		},
		Fields: map[string]FieldBounds{
			"temperature": {Min: 80, Max: 95, Variation: 3},
			"pressure":    {Min: 2.0, Max: 3.0, Variation: 0.2},
			"vibration":   {Min: 0.1, Max: 0.8, Variation: 0.1},
			"efficiency":  {Min: 85, Max: 98, Variation: 2},
			"throughput":  {Min: 120, Max: 180, Variation: 8},
			"quality":     {Min: 95, Max: 99.5, Variation: 1},
		},
	}
}

// ValueChain is the value-chain overview KPI strip.
func ValueChain() BoardSpec {
	return BoardSpec{
		Name:     "value-chain",
		Interval: 2500 * time.Millisecond,
		Initial: map[string]float64{
			"overallEfficiency": 89.2, "carbonSavings": 34, "wasteDiverted": 97,
			"waterSaved": 2.4, "co2Reduced": 847, "renewableEnergy": 76,
		},
		Fields: map[string]FieldBounds{
			"overallEfficiency": {Min: 85, Max: 95, Variation: 1.5},
			"carbonSavings":     {Min: 30, Max: 40, Variation: 2},
			"wasteDiverted":     {Min: 95, Max: 99, Variation: 1},
			"waterSaved":        {Min: 2.0, Max: 3.0, Variation: 0.2},
			"co2Reduced":        {Min: 800, Max: 900, Variation: 20},
			"renewableEnergy":   {Min: 70, Max: 85, Variation: 3},
		},
	}
}

// Circularity is a keyed board: bounds come from the metric names.
func Circularity() BoardSpec {
	return BoardSpec{
		Name:      "circularity",
		Interval:  2000 * time.Millisecond,
		Variation: 2,
		Initial: map[string]float64{
			"energy_efficiency":    91.5,
			"recycling_percentage": 94,
			"sustainability_score": 92,
			"water_volume":         1250,
			"bagasse_amount":       560,
		},
	}
}

// Maintenance tracks the primary mill unit's condition.
func Maintenance() BoardSpec {
	return BoardSpec{
		Name:     "maintenance",
		Interval: 3000 * time.Millisecond,
		Initial: map[string]float64{
			"vibration": 3.2, "temperature": 82, "pressure": 135, "health": 72,
		},
		Fields: map[string]FieldBounds{
			"vibration":   {Min: 1, Max: 12, Variation: 0.2},
			"temperature": {Min: 60, Max: 120, Variation: 2},
			"pressure":    {Min: 100, Max: 200, Variation: 5},
			"health":      {Min: 0, Max: 100, Variation: 1},
		},
	}
}

// DefaultBoards returns every preset board.
func DefaultBoards() []BoardSpec {
	return []BoardSpec{SensorBundle(), Circularity(), ValueChain(), Maintenance()}
}
