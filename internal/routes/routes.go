package routes

import (
	"net/http"

	"SugarMill.twin/internal/controller"
	"SugarMill.twin/internal/metrics"
	"github.com/gorilla/mux"
)

// NewRouter registers all application routes. ws and m may be nil.
func NewRouter(c *controller.TwinController, ws http.Handler, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(c.HandleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.HandleMethodNotAllowed)

	handle := func(path, route string, h http.HandlerFunc) {
		var handler http.Handler = h
		if m != nil {
			handler = m.WrapHandler(route, h)
		}
		router.Handle(path, handler).Methods(http.MethodGet)
	}

	handle("/health", "health", c.HandleHealth)

	api := "/api"
	handle(api+"/twin", "twin", c.HandleState)
	handle(api+"/readings", "readings", c.HandleReadings)
	handle(api+"/stations", "stations", c.HandleStations)
	handle(api+"/stations/{stationID}", "station", c.HandleStation)
	handle(api+"/production", "production", c.HandleProduction)
	handle(api+"/summary", "summary", c.HandleSummary)
	handle(api+"/boards", "boards", c.HandleBoards)
	handle(api+"/boards/{name}", "board", c.HandleBoard)

	// Websocket upgrades need the raw ResponseWriter.
	if ws != nil {
		router.Handle("/ws", ws).Methods(http.MethodGet)
	}
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	return router
}
