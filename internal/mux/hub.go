package mux

import (
	"github.com/sirupsen/logrus"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/manager"
)

// hub routes manager events to websocket clients. Events with a connection
// ID go to that connection only, the rest are broadcast to every connection
// in the game.
type hub struct {
	events     <-chan manager.Event
	connect    chan *client
	disconnect chan *client

	// gameID -> connectionID -> client
	byGame map[string]map[string]*client
}

func newHub(events <-chan manager.Event) *hub {
	return &hub{
		events:     events,
		connect:    make(chan *client, 256),
		disconnect: make(chan *client, 256),
		byGame:     make(map[string]map[string]*client),
	}
}

func (h *hub) start() {
	go h.runLoop()
}

func (h *hub) runLoop() {
	for {
		select {
		case c := <-h.connect:
			logrus.WithField("client", c.String()).Debug("client connected")
			clients, found := h.byGame[c.gameID]
			if !found {
				clients = make(map[string]*client)
				h.byGame[c.gameID] = clients
			}

			clients[c.connectionID] = c

		case client := <-h.disconnect:
			logrus.WithField("client", client.String()).Debug("client disconnected")
			if clients, found := h.byGame[client.gameID]; found {
				delete(clients, client.connectionID)
				if len(clients) == 0 {
					delete(h.byGame, client.gameID)
				}
			}

		case event, ok := <-h.events:
			if !ok {
				return
			}

			h.dispatch(event)
		}
	}
}

func (h *hub) dispatch(event manager.Event) {
	clients, found := h.byGame[event.GameID]
	if !found {
		return
	}

	msg := &response{Key: event.Key, Data: event.Data}

	if event.ConnectionID != "" {
		if client, ok := clients[event.ConnectionID]; ok {
			if !client.Send(msg) {
				logrus.WithField("client", client.String()).Warn("dropping message for slow client")
			}
		}
		return
	}

	for _, client := range clients {
		if !client.Send(msg) {
			logrus.WithField("client", client.String()).Warn("dropping message for slow client")
		}
	}

	// the game is gone, hang up on everyone
	if event.Key == manager.EventKeyGameEnded {
		for _, client := range clients {
			select {
			case client.close <- "game ended":
			default:
			}
		}

		delete(h.byGame, event.GameID)
	}
}

func (h *hub) clientConnected(c *client) {
	h.connect <- c
}

func (h *hub) clientDisconnected(c *client) {
	h.disconnect <- c
}
