package models

import (
	"fmt"
	"time"
)

// Band is an inclusive numeric range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ProductionSnapshot is the mill's daily yield and consumption picture.
type ProductionSnapshot struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"`
	RawSugarOutput    float64   `json:"raw_sugar_output"`
	BagasseOutput     float64   `json:"bagasse_output"`
	MolassesOutput    float64   `json:"molasses_output"`
	FilterCakeOutput  float64   `json:"filter_cake_output"`
	EnergyConsumed    float64   `json:"energy_consumed"`
	WaterUsed         float64   `json:"water_used"`
	OverallEfficiency float64   `json:"overall_efficiency"`
	CreatedAt         time.Time `json:"created_at"`
}

// Plausible bands for each production metric.
var (
	RawSugarBand          = Band{180, 220}   // tons/day
	BagasseBand           = Band{520, 600}   // tons/day
	MolassesBand          = Band{85, 110}    // tons/day
	FilterCakeBand        = Band{15, 23}     // tons/day
	EnergyConsumedBand    = Band{2850, 3200} // MWh/day
	WaterUsedBand         = Band{1200, 1400} // m³/day
	OverallEfficiencyBand = Band{86, 94}     // %
)

// Metric is a production value paired with its plausible band.
type Metric struct {
	Value float64
	Band  Band
}

// Fields returns the metrics keyed by their JSON name.
func (p ProductionSnapshot) Fields() map[string]Metric {
	return map[string]Metric{
		"raw_sugar_output":   {p.RawSugarOutput, RawSugarBand},
		"bagasse_output":     {p.BagasseOutput, BagasseBand},
		"molasses_output":    {p.MolassesOutput, MolassesBand},
		"filter_cake_output": {p.FilterCakeOutput, FilterCakeBand},
		"energy_consumed":    {p.EnergyConsumed, EnergyConsumedBand},
		"water_used":         {p.WaterUsed, WaterUsedBand},
		"overall_efficiency": {p.OverallEfficiency, OverallEfficiencyBand},
	}
}

// Validate reports the first metric that falls outside its band.
func (p ProductionSnapshot) Validate() error {
	for name, f := range p.Fields() {
		if !f.Band.Contains(f.Value) {
			return fmt.Errorf("%s %.2f outside [%v,%v]", name, f.Value, f.Band.Min, f.Band.Max)
		}
	}
	return nil
}
