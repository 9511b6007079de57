package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceMock   = "mock"
	SourceInflux = "influx"
)

// Config holds the application's configuration.
type Config struct {
	Port           string
	MillID         string
	Source         string
	Seed           uint64
	TickInterval   time.Duration
	VariationRange float64
	StationsFile   string
	CORSOrigins    []string
	LogPath        string

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string
	InfluxDBWrite  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string
	RedisTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads the configuration from .env and environment variables.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on system environment variables")
	}

	cfg := Config{
		Port:           getEnv("PORT", "8000"),
		MillID:         getEnv("MILL_ID", "mill-1"),
		Source:         strings.ToLower(getEnv("SOURCE", SourceMock)),
		StationsFile:   os.Getenv("STATIONS_FILE"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogPath:        os.Getenv("LOG_PATH"),
		InfluxDBURL:    os.Getenv("INFLUXDB_URL"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getEnv("INFLUXDB_BUCKET", "sugar_mill"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisChannel:   getEnv("REDIS_CHANNEL", "twin-updates"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "sugar-mill.summary"),
	}

	var err error
	if cfg.Seed, err = parseUint("SEED", uint64(time.Now().UnixNano())); err != nil {
		return Config{}, err
	}
	if cfg.TickInterval, err = parseDuration("TICK_INTERVAL", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.VariationRange, err = parseFloat("VARIATION_RANGE", 2); err != nil {
		return Config{}, err
	}
	if cfg.InfluxDBWrite, err = parseBool("INFLUXDB_WRITE", false); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RedisTTL, err = parseDuration("REDIS_TTL", time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.VariationRange < 0 {
		return fmt.Errorf("VARIATION_RANGE must not be negative, got %v", c.VariationRange)
	}
	switch c.Source {
	case SourceMock:
	case SourceInflux:
		if !c.influxConfigured() {
			return fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
		}
	default:
		return fmt.Errorf("SOURCE must be %q or %q, got %q", SourceMock, SourceInflux, c.Source)
	}
	if c.InfluxDBWrite && !c.influxConfigured() {
		return fmt.Errorf("INFLUXDB_WRITE requires INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func (c Config) influxConfigured() bool {
	return c.InfluxDBURL != "" && c.InfluxDBToken != "" && c.InfluxDBOrg != ""
}

type stationCatalog struct {
	Stations []models.ProcessStation `yaml:"stations"`
}

// LoadStations reads a station catalog. An empty path yields the default
// line-up.
func LoadStations(path string) ([]models.ProcessStation, error) {
	if path == "" {
		return models.DefaultStations(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}
	var catalog stationCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse stations file %s: %w", path, err)
	}
	if len(catalog.Stations) == 0 {
		return nil, fmt.Errorf("stations file %s defines no stations", path)
	}
	seen := make(map[string]bool, len(catalog.Stations))
	for _, st := range catalog.Stations {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("duplicate station id %q", st.ID)
		}
		seen[st.ID] = true
	}
	return catalog.Stations, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseUint(key string, def uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
