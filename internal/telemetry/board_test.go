package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetBoardsStayInBands(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for i, spec := range DefaultBoards() {
		b, err := NewBoard(spec, NewRand(uint64(i)+1))
		require.NoError(t, err, spec.Name)
		for step := 0; step < 500; step++ {
			prev := b.Values()
			require.NoError(t, b.Step(now))
			for k, v := range b.Values() {
				if spec.Keyed() {
					bounds := BoundsFor(k, prev[k])
					assert.GreaterOrEqual(t, v, bounds.Lower, "%s.%s", spec.Name, k)
					assert.LessOrEqual(t, v, bounds.Upper, "%s.%s", spec.Name, k)
					continue
				}
				f := spec.Fields[k]
				assert.GreaterOrEqual(t, v, f.Min, "%s.%s", spec.Name, k)
				assert.LessOrEqual(t, v, f.Max, "%s.%s", spec.Name, k)
			}
		}
		assert.Equal(t, now, b.UpdatedAt())
		assert.Len(t, b.Values(), len(spec.Initial))
	}
}

func TestPresetIntervals(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, SensorBundle().Interval)
	assert.Equal(t, 2000*time.Millisecond, Circularity().Interval)
	assert.Equal(t, 2500*time.Millisecond, ValueChain().Interval)
	assert.Equal(t, 3000*time.Millisecond, Maintenance().Interval)
	assert.True(t, Circularity().Keyed())
	assert.False(t, SensorBundle().Keyed())
}

func TestBoardValidation(t *testing.T) {
	_, err := NewBoard(BoardSpec{Interval: time.Second}, NewRand(1))
	assert.Error(t, err)

	_, err = NewBoard(BoardSpec{Name: "x"}, NewRand(1))
	assert.Error(t, err)

	_, err = NewBoard(BoardSpec{
		Name: "x", Interval: time.Second,
		Initial: map[string]float64{"a": 1},
		Fields:  map[string]FieldBounds{"a": {Min: 2, Max: 1}},
	}, NewRand(1))
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewBoard(BoardSpec{
		Name: "x", Interval: time.Second,
		Initial: map[string]float64{"a": 1, "b": 2},
		Fields:  map[string]FieldBounds{"a": {Min: 0, Max: 2}},
	}, NewRand(1))
	assert.Error(t, err)
}

func TestBoardStepKeepsValuesOnError(t *testing.T) {
	b, err := NewBoard(BoardSpec{
		Name: "broken", Interval: time.Second, Variation: 1,
		Initial: map[string]float64{"tank_volume": -10},
	}, NewRand(1))
	require.NoError(t, err)

	assert.ErrorIs(t, b.Step(time.Now()), ErrInvalidBounds)
	assert.Equal(t, map[string]float64{"tank_volume": -10}, b.Values())
	assert.True(t, b.UpdatedAt().IsZero())
}

func TestBoardValuesAreCopies(t *testing.T) {
	b, err := NewBoard(Maintenance(), NewRand(1))
	require.NoError(t, err)
	v := b.Values()
	v["health"] = -1
	assert.Equal(t, 72.0, b.Values()["health"])
}
