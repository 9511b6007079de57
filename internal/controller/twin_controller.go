package controller

import (
	"fmt"
	"log/slog"
	"net/http"

	"SugarMill.twin/internal/models"
	"SugarMill.twin/internal/telemetry"
	"SugarMill.twin/internal/utils"
	"github.com/gorilla/mux"
)

// TwinReader is the read side of the twin service.
type TwinReader interface {
	State() models.TwinState
	Station(id string) (models.ProcessStation, []models.SensorReading, bool)
	Boards() []models.BoardView
	Board(name string) (models.BoardView, bool)
}

// StationDetail is a station together with its current readings.
type StationDetail struct {
	Station    models.ProcessStation  `json:"station"`
	Readings   []models.SensorReading `json:"readings"`
	Efficiency float64                `json:"efficiency"`
}

// TwinController handles HTTP requests for the twin.
type TwinController struct {
	twin   TwinReader
	logger *slog.Logger
}

// NewTwinController creates a new TwinController.
func NewTwinController(twin TwinReader, logger *slog.Logger) *TwinController {
	return &TwinController{twin: twin, logger: logger}
}

// HandleState returns the full snapshot.
func (c *TwinController) HandleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.twin.State())
}

// HandleReadings returns the current readings, optionally filtered by
// station_id and sensor_type.
func (c *TwinController) HandleReadings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	types, err := utils.SensorTypesParam(query)
	if err != nil {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInvalidFormat, err.Error(), nil, http.StatusBadRequest))
		return
	}

	state := c.twin.State()
	readings := state.Readings
	if stationID := query.Get("station_id"); stationID != "" {
		if !hasStation(state.Stations, stationID) {
			utils.RespondWithError(w, stationNotFound(stationID))
			return
		}
		readings = telemetry.ReadingsForStation(readings, stationID)
	}
	if len(types) > 0 {
		readings = filterTypes(readings, types)
	}
	utils.RespondWithJSON(w, http.StatusOK, readings)
}

// HandleStations lists every station.
func (c *TwinController) HandleStations(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.twin.State().Stations)
}

// HandleStation returns one station with its readings.
func (c *TwinController) HandleStation(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["stationID"]
	st, readings, ok := c.twin.Station(stationID)
	if !ok {
		utils.RespondWithError(w, stationNotFound(stationID))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, StationDetail{
		Station:    st,
		Readings:   readings,
		Efficiency: st.EfficiencyPercentage,
	})
}

// HandleProduction returns the latest production snapshot.
func (c *TwinController) HandleProduction(w http.ResponseWriter, r *http.Request) {
	state := c.twin.State()
	if state.Production == nil {
		msg := "production data not available yet"
		if state.Error != "" {
			msg = fmt.Sprintf("production data not available: %s", state.Error)
		}
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeServiceUnavailable, msg, nil, http.StatusServiceUnavailable))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, state.Production)
}

// HandleSummary returns the aggregate health view.
func (c *TwinController) HandleSummary(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.twin.State().Summary)
}

func (c *TwinController) HandleBoards(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.twin.Boards())
}

func (c *TwinController) HandleBoard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	board, ok := c.twin.Board(name)
	if !ok {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeBoardNotFound, fmt.Sprintf("board %q not found", name), nil, http.StatusNotFound))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, board)
}

// HandleHealth reports liveness and whether the last tick failed.
func (c *TwinController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	state := c.twin.State()
	body := map[string]any{
		"status":  "ok",
		"loading": state.Loading,
	}
	if state.Error != "" {
		body["status"] = "degraded"
		body["error"] = state.Error
	}
	utils.RespondWithJSON(w, http.StatusOK, body)
}

// HandleNotFound replaces the router's plain-text 404.
func (c *TwinController) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, fmt.Sprintf("no route for %s", r.URL.Path), nil, http.StatusNotFound))
}

func (c *TwinController) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), nil, http.StatusMethodNotAllowed))
}

func stationNotFound(id string) models.APIError {
	return models.NewAPIError(models.ErrorCodeStationNotFound, fmt.Sprintf("station %q not found", id), nil, http.StatusNotFound)
}

func hasStation(stations []models.ProcessStation, id string) bool {
	for _, st := range stations {
		if st.ID == id {
			return true
		}
	}
	return false
}

func filterTypes(readings []models.SensorReading, types []models.SensorType) []models.SensorReading {
	out := make([]models.SensorReading, 0, len(readings))
	for _, r := range readings {
		for _, t := range types {
			if r.SensorType == t {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
