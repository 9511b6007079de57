package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"SugarMill.twin/internal/models"
	"SugarMill.twin/internal/telemetry"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	sensorMeasurement     = "sensor_data"
	productionMeasurement = "production_data"

	// defaultLookback bounds the live queries to recent points.
	defaultLookback = "-15m"
)

// InfluxDBRepository reads live values from InfluxDB and writes published
// snapshots back to it.
type InfluxDBRepository struct {
	client   influxdb2.Client
	org      string
	bucket   string
	millID   string
	lookback string
	logger   *slog.Logger
	classify func(models.SensorType, float64) models.Status
}

// NewInfluxDBRepository creates a new InfluxDBRepository.
func NewInfluxDBRepository(url, token, org, bucket, millID string, logger *slog.Logger) *InfluxDBRepository {
	return &InfluxDBRepository{
		client:   influxdb2.NewClient(url, token),
		org:      org,
		bucket:   bucket,
		millID:   millID,
		lookback: defaultLookback,
		logger:   logger,
		classify: telemetry.Classify,
	}
}

func (r *InfluxDBRepository) Name() string { return "influxdb" }

// Close releases the client's resources.
func (r *InfluxDBRepository) Close() {
	r.client.Close()
}

// Ping checks that InfluxDB is reachable and healthy.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	return nil
}

// BucketExists checks if the bucket exists in InfluxDB.
func (r *InfluxDBRepository) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	return true, nil
}

// EnsureBucket creates the repository's bucket if it does not exist yet.
func (r *InfluxDBRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.BucketExists(ctx, r.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return fmt.Errorf("error finding organization '%s': %w", r.org, err)
	}
	if org == nil {
		return fmt.Errorf("organization '%s' not found", r.org)
	}
	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, r.bucket); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", r.bucket, err)
	}
	r.logger.Info("bucket created", "bucket", r.bucket, "org", r.org)
	return nil
}

// Publish writes every reading and the production snapshot of state.
func (r *InfluxDBRepository) Publish(ctx context.Context, state models.TwinState) error {
	points := snapshotPoints(state)
	if len(points) == 0 {
		return nil
	}
	if err := r.client.WriteAPIBlocking(r.org, r.bucket).WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	r.logger.Debug("snapshot written", "bucket", r.bucket, "points", len(points))
	return nil
}

// Readings returns the latest value of each requested sensor on each station.
func (r *InfluxDBRepository) Readings(ctx context.Context, stationIDs []string, sensorTypes []models.SensorType) ([]models.SensorReading, error) {
	if len(stationIDs) == 0 || len(sensorTypes) == 0 {
		return []models.SensorReading{}, nil
	}
	flux := readingsQuery(r.bucket, r.lookback, r.millID, stationIDs, sensorTypes)
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	readings := []models.SensorReading{}
	for result.Next() {
		reading, ok := r.readingFromRecord(result.Record())
		if !ok {
			continue
		}
		readings = append(readings, reading)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	sortReadings(readings)
	return readings, nil
}

// Production returns the most recent production snapshot.
func (r *InfluxDBRepository) Production(ctx context.Context) (models.ProductionSnapshot, error) {
	flux := productionQuery(r.bucket, r.millID)
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return models.ProductionSnapshot{}, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	var records []*query.FluxRecord
	for result.Next() {
		records = append(records, result.Record())
	}
	if result.Err() != nil {
		return models.ProductionSnapshot{}, fmt.Errorf("query error: %w", result.Err())
	}
	if len(records) == 0 {
		return models.ProductionSnapshot{}, fmt.Errorf("no production data in bucket %s", r.bucket)
	}
	return productionFromRecords(records)
}

func (r *InfluxDBRepository) readingFromRecord(rec *query.FluxRecord) (models.SensorReading, bool) {
	stationID, _ := rec.ValueByKey("station_id").(string)
	st, ok := models.ParseSensorType(rec.Field())
	if stationID == "" || !ok {
		return models.SensorReading{}, false
	}
	value, ok := toFloat(rec.Value())
	if !ok {
		return models.SensorReading{}, false
	}
	return models.SensorReading{
		ID:         uuid.NewString(),
		StationID:  stationID,
		SensorType: st,
		Value:      value,
		Unit:       st.Unit(),
		Status:     r.classify(st, value),
		Timestamp:  rec.Time(),
	}, true
}

func snapshotPoints(state models.TwinState) []*write.Point {
	points := make([]*write.Point, 0, len(state.Readings)+1)
	for _, rd := range state.Readings {
		points = append(points, influxdb2.NewPoint(
			sensorMeasurement,
			map[string]string{"mill_id": state.MillID, "station_id": rd.StationID, "status": string(rd.Status)},
			map[string]interface{}{string(rd.SensorType): rd.Value},
			rd.Timestamp,
		))
	}
	if p := state.Production; p != nil {
		fields := make(map[string]interface{}, 7)
		for name, m := range p.Fields() {
			fields[name] = m.Value
		}
		ts := p.CreatedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		points = append(points, influxdb2.NewPoint(
			productionMeasurement,
			map[string]string{"mill_id": state.MillID},
			fields,
			ts,
		))
	}
	return points
}

func readingsQuery(bucket, lookback, millID string, stationIDs []string, sensorTypes []models.SensorType) string {
	stationFilters := make([]string, len(stationIDs))
	for i, id := range stationIDs {
		stationFilters[i] = `r["station_id"] == ` + strconv.Quote(id)
	}
	fieldFilters := make([]string, len(sensorTypes))
	for i, st := range sensorTypes {
		fieldFilters[i] = `r["_field"] == ` + strconv.Quote(string(st))
	}
	return fmt.Sprintf(`
		from(bucket: %s)
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == %s)
		|> filter(fn: (r) => r["mill_id"] == %s)
		|> filter(fn: (r) => %s)
		|> filter(fn: (r) => %s)
		|> group(columns: ["station_id", "_field"])
		|> last()
	`, strconv.Quote(bucket), lookback, strconv.Quote(sensorMeasurement), strconv.Quote(millID),
		strings.Join(stationFilters, " or "), strings.Join(fieldFilters, " or "))
}

func productionQuery(bucket, millID string) string {
	return fmt.Sprintf(`
		from(bucket: %s)
		|> range(start: -2d)
		|> filter(fn: (r) => r["_measurement"] == %s)
		|> filter(fn: (r) => r["mill_id"] == %s)
		|> last()
	`, strconv.Quote(bucket), strconv.Quote(productionMeasurement), strconv.Quote(millID))
}

var productionFields = []string{
	"raw_sugar_output", "bagasse_output", "molasses_output", "filter_cake_output",
	"energy_consumed", "water_used", "overall_efficiency",
}

func productionFromRecords(records []*query.FluxRecord) (models.ProductionSnapshot, error) {
	var p models.ProductionSnapshot
	seen := make(map[string]bool, len(productionFields))
	for _, rec := range records {
		v, ok := toFloat(rec.Value())
		if !ok {
			continue
		}
		switch rec.Field() {
		case "raw_sugar_output":
			p.RawSugarOutput = v
		case "bagasse_output":
			p.BagasseOutput = v
		case "molasses_output":
			p.MolassesOutput = v
		case "filter_cake_output":
			p.FilterCakeOutput = v
		case "energy_consumed":
			p.EnergyConsumed = v
		case "water_used":
			p.WaterUsed = v
		case "overall_efficiency":
			p.OverallEfficiency = v
		default:
			continue
		}
		seen[rec.Field()] = true
		if t := rec.Time(); t.After(p.CreatedAt) {
			p.CreatedAt = t
		}
	}
	var missing []string
	for _, f := range productionFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return models.ProductionSnapshot{}, fmt.Errorf("production fields missing: %s", strings.Join(missing, ", "))
	}
	if err := p.Validate(); err != nil {
		return models.ProductionSnapshot{}, fmt.Errorf("stored production: %w", err)
	}
	p.ID = "prod-" + uuid.NewString()
	p.Date = p.CreatedAt.Format("2006-01-02")
	return p, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func sortReadings(rs []models.SensorReading) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].StationID != rs[j].StationID {
			return rs[i].StationID < rs[j].StationID
		}
		return rs[i].SensorType < rs[j].SensorType
	})
}
