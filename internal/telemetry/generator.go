package telemetry

import (
	"math"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/google/uuid"
)

// SensorBands are the plausible ranges the generator draws from.
var SensorBands = map[models.SensorType]models.Band{
	models.SensorTemperature: {Min: 85, Max: 115},
	models.SensorPressure:    {Min: 2.5, Max: 4.0},
	models.SensorFlowRate:    {Min: 120, Max: 160},
	models.SensorVibration:   {Min: 0, Max: 10},
	models.SensorEfficiency:  {Min: 85, Max: 97},
}

// Generator produces synthetic snapshots. Each call is independent of the
// previous one.
type Generator struct {
	classifier *Classifier
	rand       Rand
	now        func() time.Time
	newID      func() string
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithClassifier replaces the default thresholds.
func WithClassifier(c *Classifier) GeneratorOption {
	return func(g *Generator) { g.classifier = c }
}

// WithNow sets the timestamp source.
func WithNow(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithIDs sets the id source.
func WithIDs(newID func() string) GeneratorOption {
	return func(g *Generator) { g.newID = newID }
}

func NewGenerator(r Rand, opts ...GeneratorOption) *Generator {
	g := &Generator{
		classifier: defaultClassifier,
		rand:       r,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewReading builds a reading whose unit and status are derived from
// sensorType and value.
func (g *Generator) NewReading(stationID string, st models.SensorType, value float64, ts time.Time) models.SensorReading {
	return models.SensorReading{
		ID:         g.newID(),
		StationID:  stationID,
		SensorType: st,
		Value:      value,
		Unit:       st.Unit(),
		Status:     g.classifier.Classify(st, value),
		Timestamp:  ts,
	}
}

// Readings draws one reading for every (station, sensor type) pair.
// Unknown sensor types are skipped; empty inputs yield an empty slice.
func (g *Generator) Readings(stationIDs []string, sensorTypes []models.SensorType) []models.SensorReading {
	out := make([]models.SensorReading, 0, len(stationIDs)*len(sensorTypes))
	ts := g.now()
	for _, id := range stationIDs {
		for _, st := range sensorTypes {
			band, ok := SensorBands[st]
			if !ok {
				continue
			}
			out = append(out, g.NewReading(id, st, round2(uniform(g.rand, band.Min, band.Max)), ts))
		}
	}
	return out
}

// Production draws a production snapshot with every metric inside its band.
func (g *Generator) Production() models.ProductionSnapshot {
	now := g.now()
	draw := func(b models.Band) float64 {
		return round2(uniform(g.rand, b.Min, b.Max))
	}
	return models.ProductionSnapshot{
		ID:                "prod-" + g.newID(),
		Date:              now.Format("2006-01-02"),
		RawSugarOutput:    draw(models.RawSugarBand),
		BagasseOutput:     draw(models.BagasseBand),
		MolassesOutput:    draw(models.MolassesBand),
		FilterCakeOutput:  draw(models.FilterCakeBand),
		EnergyConsumed:    draw(models.EnergyConsumedBand),
		WaterUsed:         draw(models.WaterUsedBand),
		OverallEfficiency: draw(models.OverallEfficiencyBand),
		CreatedAt:         now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
