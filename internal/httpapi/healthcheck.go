package httpapi

import "net/http"

type healthchecker struct {
	broker ConnectionStatus
}

// handleHealthz reports liveness. A lost broker connection is reported but is
// not a failure: paho reconnects on its own.
func (h *healthchecker) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	mqttState := "disconnected"
	if h.broker != nil && h.broker.IsConnected() {
		mqttState = "connected"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mqtt":   mqttState,
	})
}

func registerHealthcheck(mux *http.ServeMux, broker ConnectionStatus) {
	h := &healthchecker{broker: broker}
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}
