package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, models.Summary{SystemHealthPercent: 70, Total: 10})
	})
	mux.HandleFunc("/api/readings", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		write(w, http.StatusOK, []models.SensorReading{{
			StationID:  q.Get("station_id"),
			SensorType: models.SensorType(q.Get("sensor_type")),
		}})
	})
	mux.HandleFunc("/api/boards/sensors", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, models.BoardView{Name: "sensors", Values: map[string]float64{"quality": 98.5}})
	})
	mux.HandleFunc("/api/stations/ghost", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusNotFound, models.NewAPIError(models.ErrorCodeStationNotFound, `station "ghost" not found`, nil, http.StatusNotFound))
	})
	mux.HandleFunc("/api/production", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDecodesResponses(t *testing.T) {
	c := New(newTestServer(t).URL, time.Second)
	ctx := context.Background()

	summary, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70.0, summary.SystemHealthPercent)
	assert.Equal(t, 10, summary.Total)

	readings, err := c.Readings(ctx, "crushing-1", models.SensorVibration)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "crushing-1", readings[0].StationID)
	assert.Equal(t, models.SensorVibration, readings[0].SensorType)

	board, err := c.Board(ctx, "sensors")
	require.NoError(t, err)
	assert.Equal(t, 98.5, board.Values["quality"])
}

func TestClientErrors(t *testing.T) {
	c := New(newTestServer(t).URL, time.Second)
	ctx := context.Background()

	_, err := c.Station(ctx, "ghost")
	require.Error(t, err)
	var apiErr models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, models.ErrorCodeStationNotFound, apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.Production(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, errors.As(err, &apiErr))

	_, err = New("http://127.0.0.1:1", 100*time.Millisecond).State(ctx)
	assert.Error(t, err)
}
