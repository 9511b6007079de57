package telemetry

import (
	"fmt"

	"SugarMill.twin/internal/models"
)

// Direction tells which side of a threshold is unhealthy.
type Direction int

const (
	// Above means values greater than the limit are unhealthy.
	Above Direction = iota
	// Below means values smaller than the limit are unhealthy.
	Below
)

// Rule holds the warning and critical limits for one sensor type.
type Rule struct {
	Direction Direction `json:"direction"`
	Warning   float64   `json:"warning"`
	Critical  float64   `json:"critical"`
}

func (r Rule) classify(v float64) models.Status {
	status := models.StatusNormal
	switch r.Direction {
	case Above:
		if v > r.Warning {
			status = models.StatusWarning
		}
		if v > r.Critical {
			status = models.StatusCritical
		}
	case Below:
		if v < r.Warning {
			status = models.StatusWarning
		}
		if v < r.Critical {
			status = models.StatusCritical
		}
	}
	return status
}

// Thresholds maps each sensor type to its rule.
type Thresholds map[models.SensorType]Rule

// DefaultThresholds returns the mill's standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		models.SensorTemperature: {Direction: Above, Warning: 110, Critical: 115},
		models.SensorPressure:    {Direction: Above, Warning: 3.8, Critical: 4.0},
		models.SensorFlowRate:    {Direction: Below, Warning: 130, Critical: 125},
		models.SensorVibration:   {Direction: Above, Warning: 7, Critical: 8.5},
		models.SensorEfficiency:  {Direction: Below, Warning: 88, Critical: 85},
	}
}

// Validate rejects rules whose critical limit is less severe than the warning limit.
func (t Thresholds) Validate() error {
	for st, r := range t {
		switch r.Direction {
		case Above:
			if r.Critical < r.Warning {
				return fmt.Errorf("%s: critical %v below warning %v", st, r.Critical, r.Warning)
			}
		case Below:
			if r.Critical > r.Warning {
				return fmt.Errorf("%s: critical %v above warning %v", st, r.Critical, r.Warning)
			}
		default:
			return fmt.Errorf("%s: unknown direction %d", st, r.Direction)
		}
	}
	return nil
}

// Classifier maps readings to status tiers.
type Classifier struct {
	rules Thresholds
}

// NewClassifier builds a classifier from a validated copy of t.
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	rules := make(Thresholds, len(t))
	for k, v := range t {
		rules[k] = v
	}
	return &Classifier{rules: rules}, nil
}

// Classify returns the status for value. Sensor types without a rule are normal.
func (c *Classifier) Classify(st models.SensorType, value float64) models.Status {
	r, ok := c.rules[st]
	if !ok {
		return models.StatusNormal
	}
	return r.classify(value)
}

var defaultClassifier = &Classifier{rules: DefaultThresholds()}

// Classify applies DefaultThresholds.
func Classify(st models.SensorType, value float64) models.Status {
	return defaultClassifier.Classify(st, value)
}
