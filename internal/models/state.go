package models

import "time"

// TwinState is everything a consumer needs to render the twin at one instant.
type TwinState struct {
	MillID     string              `json:"mill_id"`
	Readings   []SensorReading     `json:"readings"`
	Stations   []ProcessStation    `json:"stations"`
	Production *ProductionSnapshot `json:"production"`
	Summary    Summary             `json:"summary"`
	Loading    bool                `json:"loading"`
	Error      string              `json:"error,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of s.
func (s TwinState) Clone() TwinState {
	out := s
	out.Readings = make([]SensorReading, len(s.Readings))
	copy(out.Readings, s.Readings)
	out.Stations = make([]ProcessStation, len(s.Stations))
	copy(out.Stations, s.Stations)
	if s.Production != nil {
		p := *s.Production
		out.Production = &p
	}
	if s.Summary.ByType != nil {
		out.Summary.ByType = make(map[SensorType]TypeStats, len(s.Summary.ByType))
		for k, v := range s.Summary.ByType {
			out.Summary.ByType[k] = v
		}
	}
	return out
}

// BoardView is the current state of one walked metric board.
type BoardView struct {
	Name      string             `json:"name"`
	Interval  string             `json:"interval"`
	Values    map[string]float64 `json:"values"`
	UpdatedAt time.Time          `json:"updated_at"`
	Error     string             `json:"error,omitempty"`
}
