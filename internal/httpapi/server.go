package httpapi

import (
	"net/http"
	"time"

	"github.com/michd9/clima/internal/filter"
)

// ConnectionStatus reports the broker connection state.
type ConnectionStatus interface {
	IsConnected() bool
}

// SnapshotSource is the read side of the sensor filter.
type SnapshotSource interface {
	Snapshot() (filter.Snapshot, bool)
}

func NewMux(readings SnapshotSource, broker ConnectionStatus) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, broker)
	registerReadings(mux, readings)
	return mux
}

func NewServer(addr string, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           requestLogger(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
