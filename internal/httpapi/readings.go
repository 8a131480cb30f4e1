package httpapi

import "net/http"

type readingsHandler struct {
	source SnapshotSource
}

func (h *readingsHandler) handleReadings(w http.ResponseWriter, _ *http.Request) {
	snapshot, ok := h.source.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no sensor readings collected yet")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func registerReadings(mux *http.ServeMux, source SnapshotSource) {
	h := &readingsHandler{source: source}
	mux.HandleFunc("GET /readings", h.handleReadings)
}
