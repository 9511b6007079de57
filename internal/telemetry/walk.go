package telemetry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidBounds is returned when a computed lower bound exceeds its upper bound.
var ErrInvalidBounds = errors.New("invalid bound configuration")

// InvalidBoundsError describes a band that cannot be walked.
type InvalidBoundsError struct {
	Key   string
	Prev  float64
	Lower float64
	Upper float64
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("%v: key %q prev %v gives lower %v > upper %v", ErrInvalidBounds, e.Key, e.Prev, e.Lower, e.Upper)
}

func (e *InvalidBoundsError) Unwrap() error { return ErrInvalidBounds }

// Bounds is the clamp band for one step.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BoundsFor derives the band for key from its previous value. Matching on the
// key name is case-insensitive.
func BoundsFor(key string, prev float64) Bounds {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "efficiency") || strings.Contains(k, "percentage"):
		return Bounds{math.Max(80, prev-10), math.Min(100, prev+10)}
	case strings.Contains(k, "score"):
		return Bounds{math.Max(85, prev-5), math.Min(100, prev+5)}
	case strings.Contains(k, "volume") || strings.Contains(k, "amount"):
		return Bounds{math.Max(prev*0.9, prev-50), math.Min(prev*1.1, prev+50)}
	default:
		return Bounds{0, 100}
	}
}

// FieldBounds configures a field with a fixed band and its own variation.
type FieldBounds struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Variation float64 `json:"variation"`
}

// Walker nudges values by bounded random deltas.
type Walker struct {
	Variation float64
	rand      Rand
}

func NewWalker(variation float64, r Rand) *Walker {
	return &Walker{Variation: variation, rand: r}
}

func (w *Walker) delta(variation float64) float64 {
	return (w.rand.Float64() - 0.5) * variation
}

// Step moves prev by one random delta and clamps it into BoundsFor(key, prev).
func (w *Walker) Step(prev float64, key string) (float64, error) {
	b := BoundsFor(key, prev)
	if err := checkBounds(key, prev, b); err != nil {
		return prev, err
	}
	return clamp(prev+w.delta(w.Variation), b), nil
}

// StepField moves prev inside the fixed band of f.
func (w *Walker) StepField(key string, prev float64, f FieldBounds) (float64, error) {
	b := Bounds{f.Min, f.Max}
	if err := checkBounds(key, prev, b); err != nil {
		return prev, err
	}
	return clamp(prev+w.delta(f.Variation), b), nil
}

// StepAll steps every key of values and returns a new map with the same keys.
// Keys are visited in sorted order so a seeded walker is reproducible.
func (w *Walker) StepAll(values map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(values))
	for _, k := range sortedKeys(values) {
		next, err := w.Step(values[k], k)
		if err != nil {
			return nil, err
		}
		out[k] = next
	}
	return out, nil
}

func checkBounds(key string, prev float64, b Bounds) error {
	if math.IsNaN(prev) || math.IsInf(prev, 0) || math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || b.Lower > b.Upper {
		return &InvalidBoundsError{Key: key, Prev: prev, Lower: b.Lower, Upper: b.Upper}
	}
	return nil
}

func clamp(v float64, b Bounds) float64 {
	return math.Max(b.Lower, math.Min(b.Upper, v))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
