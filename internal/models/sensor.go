package models

import "time"

// SensorType identifies what a reading measures.
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorPressure    SensorType = "pressure"
	SensorFlowRate    SensorType = "flow_rate"
	SensorVibration   SensorType = "vibration"
	SensorEfficiency  SensorType = "efficiency"
)

// SensorTypes lists every sensor type in display order.
var SensorTypes = []SensorType{
	SensorTemperature,
	SensorPressure,
	SensorFlowRate,
	SensorVibration,
	SensorEfficiency,
}

var sensorUnits = map[SensorType]string{
	SensorTemperature: "°C",
	SensorPressure:    "bar",
	SensorFlowRate:    "L/min",
	SensorVibration:   "mm/s",
	SensorEfficiency:  "%",
}

// Unit returns the display unit for the sensor type, or "" if the type is unknown.
func (t SensorType) Unit() string {
	return sensorUnits[t]
}

// Valid reports whether t is one of the known sensor types.
func (t SensorType) Valid() bool {
	_, ok := sensorUnits[t]
	return ok
}

// ParseSensorType converts s into a SensorType.
func ParseSensorType(s string) (SensorType, bool) {
	t := SensorType(s)
	return t, t.Valid()
}

// Status is the severity tier of a reading.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Severity orders statuses so that higher means worse.
func (s Status) Severity() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 0
	}
}

func (s Status) String() string {
	return string(s)
}

// SensorReading is a single sample from one sensor on one station.
// Status is always derived from SensorType and Value.
type SensorReading struct {
	ID         string     `json:"id"`
	StationID  string     `json:"station_id"`
	SensorType SensorType `json:"sensor_type"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit"`
	Status     Status     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
}
