package service

import (
	"context"

	"SugarMill.twin/internal/models"
	"SugarMill.twin/internal/telemetry"
)

// Source supplies the readings and production figures for a tick. The mock
// source generates them; a repository can serve live values instead.
type Source interface {
	Readings(ctx context.Context, stationIDs []string, sensorTypes []models.SensorType) ([]models.SensorReading, error)
	Production(ctx context.Context) (models.ProductionSnapshot, error)
}

// Sink receives every published state.
type Sink interface {
	Name() string
	Publish(ctx context.Context, state models.TwinState) error
}

// MockSource serves synthetic data from a Generator.
type MockSource struct {
	gen *telemetry.Generator
}

func NewMockSource(gen *telemetry.Generator) *MockSource {
	return &MockSource{gen: gen}
}

func (m *MockSource) Readings(_ context.Context, stationIDs []string, sensorTypes []models.SensorType) ([]models.SensorReading, error) {
	return m.gen.Readings(stationIDs, sensorTypes), nil
}

func (m *MockSource) Production(context.Context) (models.ProductionSnapshot, error) {
	return m.gen.Production(), nil
}
