package utils

import (
	"fmt"
	"net/url"

	"SugarMill.twin/internal/models"
)

// SensorTypesParam parses every sensor_type value of the query. An empty
// result means no filter.
func SensorTypesParam(q url.Values) ([]models.SensorType, error) {
	raw := q["sensor_type"]
	out := make([]models.SensorType, 0, len(raw))
	for _, v := range raw {
		st, ok := models.ParseSensorType(v)
		if !ok {
			return nil, fmt.Errorf("unknown sensor_type %q", v)
		}
		out = append(out, st)
	}
	return out, nil
}
