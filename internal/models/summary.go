package models

// TypeStats aggregates the readings of one sensor type.
type TypeStats struct {
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
	Warning  int     `json:"warning"`
	Critical int     `json:"critical"`
}

// Summary holds the statistics derived from one snapshot.
type Summary struct {
	SystemHealthPercent float64                  `json:"system_health_percent"`
	Total               int                      `json:"total"`
	Normal              int                      `json:"normal"`
	Warning             int                      `json:"warning"`
	Critical            int                      `json:"critical"`
	ByType              map[SensorType]TypeStats `json:"by_type"`
	TotalCapacity       float64                  `json:"total_capacity_tons_per_hour"`
	AverageEfficiency   float64                  `json:"average_efficiency_percentage"`
}
