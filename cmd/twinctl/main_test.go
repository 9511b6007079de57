package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"SugarMill.twin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/boards/maintenance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.BoardView{Name: "maintenance"})
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, run([]string{"--addr", srv.URL, "board", "maintenance"}, &out))
	assert.Contains(t, out.String(), `"name": "maintenance"`)
}

func TestRunUsageErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"explode"}, &out))
	assert.Error(t, run([]string{"station"}, &out))
	assert.Error(t, run([]string{"readings", "--type", "humidity"}, &out))
}
