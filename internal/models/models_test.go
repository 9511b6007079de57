package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorTypeUnits(t *testing.T) {
	want := map[SensorType]string{
		SensorTemperature: "°C",
		SensorPressure:    "bar",
		SensorFlowRate:    "L/min",
		SensorVibration:   "mm/s",
		SensorEfficiency:  "%",
	}
	for _, st := range SensorTypes {
		assert.Equal(t, want[st], st.Unit(), st)
		parsed, ok := ParseSensorType(string(st))
		assert.True(t, ok)
		assert.Equal(t, st, parsed)
	}
	_, ok := ParseSensorType("humidity")
	assert.False(t, ok)
}

func TestStatusSeverityOrder(t *testing.T) {
	assert.Less(t, StatusNormal.Severity(), StatusWarning.Severity())
	assert.Less(t, StatusWarning.Severity(), StatusCritical.Severity())
}

func TestDefaultStationsAreValid(t *testing.T) {
	stations := DefaultStations()
	require.Len(t, stations, 6)
	seen := map[string]bool{}
	for _, st := range stations {
		require.NoError(t, st.Validate())
		assert.False(t, seen[st.ID], "duplicate %s", st.ID)
		seen[st.ID] = true
	}
	assert.Equal(t, stations[0].ID, StationIDs(stations)[0])
}

func TestStationValidate(t *testing.T) {
	base := DefaultStations()[0]

	s := base
	s.ID = ""
	assert.Error(t, s.Validate())

	s = base
	s.Type = "grinding"
	assert.Error(t, s.Validate())

	s = base
	s.Status = "broken"
	assert.Error(t, s.Validate())

	s = base
	s.CapacityTonsPerHour = 0
	assert.Error(t, s.Validate())

	s = base
	s.EfficiencyPercentage = 101
	assert.Error(t, s.Validate())
}

func TestProductionValidate(t *testing.T) {
	p := ProductionSnapshot{
		RawSugarOutput: 200, BagasseOutput: 560, MolassesOutput: 100, FilterCakeOutput: 20,
		EnergyConsumed: 3000, WaterUsed: 1300, OverallEfficiency: 90,
	}
	require.NoError(t, p.Validate())
	assert.Len(t, p.Fields(), 7)

	p.WaterUsed = 1500
	assert.Error(t, p.Validate())
}

func TestCloneKeepsEmptySlices(t *testing.T) {
	s := TwinState{Readings: []SensorReading{}, Stations: []ProcessStation{}}
	b, err := json.Marshal(s.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"readings":[]`)
	assert.Contains(t, string(b), `"production":null`)
}

func TestCloneIsDeep(t *testing.T) {
	s := TwinState{
		Readings:   []SensorReading{{ID: "r"}},
		Stations:   []ProcessStation{{ID: "s"}},
		Production: &ProductionSnapshot{ID: "p"},
		Summary:    Summary{ByType: map[SensorType]TypeStats{SensorPressure: {Count: 1}}},
	}
	c := s.Clone()
	c.Readings[0].ID = "x"
	c.Stations[0].ID = "x"
	c.Production.ID = "x"
	c.Summary.ByType[SensorPressure] = TypeStats{Count: 9}

	assert.Equal(t, "r", s.Readings[0].ID)
	assert.Equal(t, "s", s.Stations[0].ID)
	assert.Equal(t, "p", s.Production.ID)
	assert.Equal(t, 1, s.Summary.ByType[SensorPressure].Count)
}

func TestAPIErrorJSON(t *testing.T) {
	e := NewAPIError(ErrorCodeBoardNotFound, "board \"x\" not found", nil, 404)
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"board_not_found","message":"board \"x\" not found"}`, string(b))
	assert.Equal(t, `[board_not_found] board "x" not found`, e.Error())
}
