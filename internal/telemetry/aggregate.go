package telemetry

import "SugarMill.twin/internal/models"

// Summarize derives the snapshot statistics. With no readings the health is
// 0% and every count is zero; with no stations capacity and efficiency are 0.
func Summarize(readings []models.SensorReading, stations []models.ProcessStation) models.Summary {
	s := models.Summary{
		Total:             len(readings),
		ByType:            make(map[models.SensorType]models.TypeStats),
		TotalCapacity:     TotalCapacity(stations),
		AverageEfficiency: AverageEfficiency(stations),
	}

	sums := make(map[models.SensorType]float64)
	for _, r := range readings {
		ts := s.ByType[r.SensorType]
		ts.Count++
		sums[r.SensorType] += r.Value

		switch r.Status {
		case models.StatusCritical:
			s.Critical++
			ts.Critical++
		case models.StatusWarning:
			s.Warning++
			ts.Warning++
		default:
			s.Normal++
		}
		s.ByType[r.SensorType] = ts
	}
	for st, ts := range s.ByType {
		ts.Average = sums[st] / float64(ts.Count)
		s.ByType[st] = ts
	}

	if s.Total > 0 {
		s.SystemHealthPercent = 100 * float64(s.Normal) / float64(s.Total)
	}
	return s
}

// ReadingsForStation returns the readings that belong to stationID.
func ReadingsForStation(readings []models.SensorReading, stationID string) []models.SensorReading {
	out := []models.SensorReading{}
	for _, r := range readings {
		if r.StationID == stationID {
			out = append(out, r)
		}
	}
	return out
}

// StationEfficiency returns the efficiency of stationID, or 0 if it is unknown.
func StationEfficiency(stations []models.ProcessStation, stationID string) float64 {
	for _, s := range stations {
		if s.ID == stationID {
			return s.EfficiencyPercentage
		}
	}
	return 0
}

func TotalCapacity(stations []models.ProcessStation) float64 {
	var total float64
	for _, s := range stations {
		total += s.CapacityTonsPerHour
	}
	return total
}

func AverageEfficiency(stations []models.ProcessStation) float64 {
	if len(stations) == 0 {
		return 0
	}
	var sum float64
	for _, s := range stations {
		sum += s.EfficiencyPercentage
	}
	return sum / float64(len(stations))
}
