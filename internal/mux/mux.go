// Package mux exposes the HTTP and websocket surface of the poker server.
package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/manager"
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	manager *manager.Manager
	hub     *hub
}

// NewMux returns a new HTTP mux and starts the event hub
func NewMux(version string, m *manager.Manager) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		manager: m,
		hub:     newHub(m.Events()),
	}

	this.hub.start()

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodPost).Path("/game").Handler(this.postGame())

	gr := r.PathPrefix("/game/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
	gr.Methods(http.MethodGet).Path("/ws").Handler(this.getGameUUIDWS())

	return this
}
