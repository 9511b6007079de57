package telemetry

import (
	"strings"
	"testing"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *Generator {
	return NewGenerator(NewRand(seed), WithNow(func() time.Time { return fixedNow }))
}

func TestGeneratorEfficiencyReadings(t *testing.T) {
	g := newTestGenerator(1)
	readings := g.Readings([]string{"A", "B"}, []models.SensorType{models.SensorEfficiency})

	require.Len(t, readings, 2)
	for i, r := range readings {
		assert.Equal(t, []string{"A", "B"}[i], r.StationID)
		assert.Equal(t, "%", r.Unit)
		assert.GreaterOrEqual(t, r.Value, 85.0)
		assert.LessOrEqual(t, r.Value, 97.0)
		assert.Equal(t, Classify(models.SensorEfficiency, r.Value), r.Status)
		assert.Equal(t, fixedNow, r.Timestamp)
		assert.NotEmpty(t, r.ID)
	}
	assert.NotEqual(t, readings[0].ID, readings[1].ID)
}

func TestGeneratorValuesStayInBands(t *testing.T) {
	g := newTestGenerator(42)
	ids := models.StationIDs(models.DefaultStations())
	for i := 0; i < 200; i++ {
		for _, r := range g.Readings(ids, models.SensorTypes) {
			band := SensorBands[r.SensorType]
			assert.True(t, band.Contains(r.Value), "%s=%v outside %v", r.SensorType, r.Value, band)
			assert.Equal(t, r.SensorType.Unit(), r.Unit)
			assert.Equal(t, r.Value, round2(r.Value))
		}
	}
}

func TestGeneratorEmptyInputs(t *testing.T) {
	g := newTestGenerator(1)

	got := g.Readings(nil, models.SensorTypes)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = g.Readings([]string{"A"}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGeneratorSkipsUnknownTypes(t *testing.T) {
	g := newTestGenerator(1)
	got := g.Readings([]string{"A"}, []models.SensorType{"humidity", models.SensorPressure})
	require.Len(t, got, 1)
	assert.Equal(t, models.SensorPressure, got[0].SensorType)
}

func TestGeneratorIsReproducible(t *testing.T) {
	ids := func() func() string {
		n := 0
		return func() string { n++; return strings.Repeat("x", n) }
	}
	a := NewGenerator(NewRand(9), WithNow(func() time.Time { return fixedNow }), WithIDs(ids()))
	b := NewGenerator(NewRand(9), WithNow(func() time.Time { return fixedNow }), WithIDs(ids()))
	stations := []string{"s1", "s2"}
	assert.Equal(t, a.Readings(stations, models.SensorTypes), b.Readings(stations, models.SensorTypes))
	assert.Equal(t, a.Production(), b.Production())
}

func TestGeneratorProduction(t *testing.T) {
	g := newTestGenerator(3)
	for i := 0; i < 100; i++ {
		p := g.Production()
		require.NoError(t, p.Validate())
		assert.True(t, strings.HasPrefix(p.ID, "prod-"))
		assert.Equal(t, "2024-03-09", p.Date)
		assert.Equal(t, fixedNow, p.CreatedAt)
	}
}

func TestNewReadingClassifiesWithCustomThresholds(t *testing.T) {
	c, err := NewClassifier(Thresholds{
		models.SensorVibration: {Direction: Above, Warning: 1, Critical: 2},
	})
	require.NoError(t, err)
	g := NewGenerator(NewRand(1), WithClassifier(c), WithIDs(func() string { return "r-1" }))

	r := g.NewReading("crusher-1", models.SensorVibration, 1.5, fixedNow)
	assert.Equal(t, models.StatusWarning, r.Status)
	assert.Equal(t, "mm/s", r.Unit)
	assert.Equal(t, "r-1", r.ID)
}
