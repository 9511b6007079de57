package telemetry

import (
	"testing"

	"SugarMill.twin/internal/models"
	"github.com/stretchr/testify/assert"
)

func readingsWith(n map[models.Status]int, st models.SensorType, value float64) []models.SensorReading {
	var out []models.SensorReading
	for _, status := range []models.Status{models.StatusNormal, models.StatusWarning, models.StatusCritical} {
		for i := 0; i < n[status]; i++ {
			out = append(out, models.SensorReading{StationID: "s", SensorType: st, Value: value, Status: status})
		}
	}
	return out
}

func TestSummarizeHealth(t *testing.T) {
	readings := readingsWith(map[models.Status]int{
		models.StatusNormal: 7, models.StatusWarning: 2, models.StatusCritical: 1,
	}, models.SensorTemperature, 100)

	s := Summarize(readings, nil)
	assert.Equal(t, 70.0, s.SystemHealthPercent)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 7, s.Normal)
	assert.Equal(t, 2, s.Warning)
	assert.Equal(t, 1, s.Critical)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Equal(t, 0.0, s.SystemHealthPercent)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Normal)
	assert.Zero(t, s.Warning)
	assert.Zero(t, s.Critical)
	assert.Empty(t, s.ByType)
	assert.Zero(t, s.TotalCapacity)
	assert.Zero(t, s.AverageEfficiency)
}

func TestSummarizeByType(t *testing.T) {
	readings := []models.SensorReading{
		{SensorType: models.SensorPressure, Value: 3, Status: models.StatusNormal},
		{SensorType: models.SensorPressure, Value: 3.9, Status: models.StatusWarning},
		{SensorType: models.SensorPressure, Value: 4.2, Status: models.StatusCritical},
		{SensorType: models.SensorFlowRate, Value: 140, Status: models.StatusNormal},
	}
	s := Summarize(readings, nil)

	p := s.ByType[models.SensorPressure]
	assert.Equal(t, 3, p.Count)
	assert.InDelta(t, 3.7, p.Average, 1e-9)
	assert.Equal(t, 1, p.Warning)
	assert.Equal(t, 1, p.Critical)

	f := s.ByType[models.SensorFlowRate]
	assert.Equal(t, models.TypeStats{Count: 1, Average: 140}, f)
	assert.Equal(t, 50.0, s.SystemHealthPercent)
}

func TestFleetFigures(t *testing.T) {
	stations := models.DefaultStations()
	var capacity, eff float64
	for _, st := range stations {
		capacity += st.CapacityTonsPerHour
		eff += st.EfficiencyPercentage
	}
	s := Summarize(nil, stations)
	assert.InDelta(t, capacity, s.TotalCapacity, 1e-9)
	assert.InDelta(t, eff/float64(len(stations)), s.AverageEfficiency, 1e-9)
	assert.Equal(t, stations[0].EfficiencyPercentage, StationEfficiency(stations, stations[0].ID))
	assert.Zero(t, StationEfficiency(stations, "nope"))
}

func TestReadingsForStation(t *testing.T) {
	readings := []models.SensorReading{{StationID: "a"}, {StationID: "b"}, {StationID: "a"}}
	assert.Len(t, ReadingsForStation(readings, "a"), 2)
	got := ReadingsForStation(readings, "c")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
