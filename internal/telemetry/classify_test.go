package telemetry

import (
	"testing"

	"SugarMill.twin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTemperature(t *testing.T) {
	assert.Equal(t, models.StatusCritical, Classify(models.SensorTemperature, 116))
	assert.Equal(t, models.StatusWarning, Classify(models.SensorTemperature, 111))
	assert.Equal(t, models.StatusNormal, Classify(models.SensorTemperature, 100))
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		st    models.SensorType
		value float64
		want  models.Status
	}{
		{models.SensorTemperature, 110, models.StatusNormal},
		{models.SensorTemperature, 115, models.StatusWarning},
		{models.SensorPressure, 3.8, models.StatusNormal},
		{models.SensorPressure, 3.9, models.StatusWarning},
		{models.SensorPressure, 4.01, models.StatusCritical},
		{models.SensorFlowRate, 130, models.StatusNormal},
		{models.SensorFlowRate, 129.9, models.StatusWarning},
		{models.SensorFlowRate, 124, models.StatusCritical},
		{models.SensorVibration, 7, models.StatusNormal},
		{models.SensorVibration, 8.5, models.StatusWarning},
		{models.SensorVibration, 9, models.StatusCritical},
		{models.SensorEfficiency, 88, models.StatusNormal},
		{models.SensorEfficiency, 85, models.StatusWarning},
		{models.SensorEfficiency, 84.99, models.StatusCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.st, tt.value), "%s=%v", tt.st, tt.value)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	r := NewRand(7)
	types := append([]models.SensorType{"humidity"}, models.SensorTypes...)
	for i := 0; i < 2000; i++ {
		st := types[i%len(types)]
		v := uniform(r, -1000, 1000)
		got := Classify(st, v)
		assert.Contains(t, []models.Status{models.StatusNormal, models.StatusWarning, models.StatusCritical}, got)
		assert.Equal(t, got, Classify(st, v))
	}
	assert.Equal(t, models.StatusNormal, Classify("humidity", 1e9))
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(Thresholds{
		models.SensorTemperature: {Direction: Above, Warning: 90, Critical: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWarning, c.Classify(models.SensorTemperature, 95))
	assert.Equal(t, models.StatusNormal, c.Classify(models.SensorPressure, 10))

	_, err = NewClassifier(Thresholds{
		models.SensorTemperature: {Direction: Above, Warning: 100, Critical: 90},
	})
	assert.Error(t, err)

	_, err = NewClassifier(Thresholds{
		models.SensorEfficiency: {Direction: Below, Warning: 85, Critical: 88},
	})
	assert.Error(t, err)
}

func TestDefaultThresholdsValid(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())
	for _, st := range models.SensorTypes {
		assert.Contains(t, DefaultThresholds(), st)
	}
}
