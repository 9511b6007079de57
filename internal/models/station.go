package models

import (
	"fmt"
	"time"
)

// StationType is the process step a station performs.
type StationType string

const (
	StationCrushing        StationType = "crushing"
	StationExtraction      StationType = "extraction"
	StationClarification   StationType = "clarification"
	StationEvaporation     StationType = "evaporation"
	StationCrystallization StationType = "crystallization"
	StationCentrifugation  StationType = "centrifugation"
)

func (t StationType) Valid() bool {
	switch t {
	case StationCrushing, StationExtraction, StationClarification,
		StationEvaporation, StationCrystallization, StationCentrifugation:
		return true
	}
	return false
}

// StationStatus is the operating state of a station.
type StationStatus string

const (
	StationActive      StationStatus = "active"
	StationMaintenance StationStatus = "maintenance"
	StationOffline     StationStatus = "offline"
)

func (s StationStatus) Valid() bool {
	return s == StationActive || s == StationMaintenance || s == StationOffline
}

// Position is a point in plant coordinates (x, y, z).
type Position [3]float64

// ProcessStation is one unit of the mill. The set of stations is fixed for
// a session; only EfficiencyPercentage changes between ticks.
type ProcessStation struct {
	ID                   string        `json:"id" yaml:"id"`
	Name                 string        `json:"name" yaml:"name"`
	Type                 StationType   `json:"type" yaml:"type"`
	CapacityTonsPerHour  float64       `json:"capacity_tons_per_hour" yaml:"capacity_tons_per_hour"`
	EfficiencyPercentage float64       `json:"efficiency_percentage" yaml:"efficiency_percentage"`
	Status               StationStatus `json:"status" yaml:"status"`
	Position             Position      `json:"position" yaml:"position"`
	UpdatedAt            time.Time     `json:"updated_at" yaml:"-"`
}

// Validate checks the station invariants.
func (s ProcessStation) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station id is required")
	}
	if !s.Type.Valid() {
		return fmt.Errorf("station %s: unknown type %q", s.ID, s.Type)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("station %s: unknown status %q", s.ID, s.Status)
	}
	if s.CapacityTonsPerHour <= 0 {
		return fmt.Errorf("station %s: capacity must be positive, got %v", s.ID, s.CapacityTonsPerHour)
	}
	if s.EfficiencyPercentage < 0 || s.EfficiencyPercentage > 100 {
		return fmt.Errorf("station %s: efficiency %v outside [0,100]", s.ID, s.EfficiencyPercentage)
	}
	return nil
}

// DefaultStations returns the mill's standard line-up.
func DefaultStations() []ProcessStation {
	return []ProcessStation{
		{ID: "crushing-1", Name: "Crushing Station 1", Type: StationCrushing, CapacityTonsPerHour: 120, EfficiencyPercentage: 87, Status: StationActive, Position: Position{-20, 0, -15}},
		{ID: "crushing-2", Name: "Crushing Station 2", Type: StationCrushing, CapacityTonsPerHour: 115, EfficiencyPercentage: 82, Status: StationActive, Position: Position{-20, 0, 15}},
		{ID: "extraction-1", Name: "Juice Extraction", Type: StationExtraction, CapacityTonsPerHour: 108, EfficiencyPercentage: 91, Status: StationActive, Position: Position{0, 0, 0}},
		{ID: "clarification-1", Name: "Clarification Unit", Type: StationClarification, CapacityTonsPerHour: 95, EfficiencyPercentage: 94, Status: StationActive, Position: Position{20, 0, -10}},
		{ID: "evaporation-1", Name: "Evaporation System", Type: StationEvaporation, CapacityTonsPerHour: 25, EfficiencyPercentage: 88, Status: StationActive, Position: Position{40, 0, 0}},
		{ID: "crystallization-1", Name: "Crystallization Plant", Type: StationCrystallization, CapacityTonsPerHour: 22, EfficiencyPercentage: 85, Status: StationActive, Position: Position{60, 0, 10}},
	}
}

// StationIDs returns the ids of stations in order.
func StationIDs(stations []ProcessStation) []string {
	ids := make([]string, len(stations))
	for i, s := range stations {
		ids[i] = s.ID
	}
	return ids
}
