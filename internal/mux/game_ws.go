package mux

import (
	"errors"
	"net/http"
	"time"

	gmux "github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vigarblock/texas-holdem-poker-server/internal/util"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/game"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

func (m *Mux) getGameUUIDWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		gameID := gmux.Vars(r)["uuid"]
		if !m.manager.HasGame(gameID) {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client := newClient(conn, gameID)
		m.hub.clientConnected(client)

		waitForCloseFrame := make(chan bool)
		defer func() {
			m.hub.clientDisconnected(client)
			_ = conn.Close()
			close(waitForCloseFrame)

			logrus.WithError(client.closeError).WithField("client", client.String()).Debug("client disconnected")
		}()

		go m.webSocketWriteLoop(client, waitForCloseFrame)
		m.webSocketReadLoop(client)
	}
}

func (m *Mux) webSocketWriteLoop(client *client, waitForCloseFrame chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reason := <-client.close:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))

			// wait for the close frame
			select {
			case <-waitForCloseFrame:
			case <-time.After(time.Second):
			}
			return
		case msg, ok := <-client.send:
			if !ok {
				return
			}

			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("client", client.String()).Error("could not write message")
				return
			}
		}
	}
}

func (m *Mux) webSocketReadLoop(client *client) {
	for {
		var msg payloadIn
		if err := client.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsUnexpectedCloseError(err) {
				logrus.WithError(err).Error("could not read JSON")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
				logrus.WithError(err).Error("could not read onMessage")
			}

			// a dropped connection is not an exit, the player can reconnect
			client.closeError = err
			return
		}

		m.handleMessage(client, &msg)
	}
}

type joinData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// handleMessage dispatches a client message to the game manager
func (m *Mux) handleMessage(client *client, msg *payloadIn) {
	var err error
	var data interface{}

	switch msg.Action {
	case "join":
		playerID := msg.PlayerID
		if playerID == "" {
			playerID = newPlayerID()
		}

		name := msg.Name
		if name == "" {
			name = util.GetRandomName()
		}

		if err = m.manager.JoinGame(client.gameID, playerID, name, client.connectionID); err == nil {
			client.playerID = playerID
			data = joinData{GameID: client.gameID, PlayerID: playerID}
		}

	case "startGame":
		err = m.requireJoined(client, func() error {
			return m.manager.StartGame(client.gameID)
		})

	case "playerAction":
		err = m.requireJoined(client, func() error {
			return m.manager.PlayerAction(client.gameID, client.playerID, msg.PlayerAction, msg.Amount)
		})

	case "exit":
		err = m.requireJoined(client, func() error {
			return m.manager.ExitGame(client.gameID, client.playerID)
		})

	default:
		err = game.UserError("unknown action: " + msg.Action)
	}

	if err != nil {
		client.Send(errorMessage(msg.Context, userFacingMessage(err)))
		return
	}

	client.Send(ok(msg.Context, data))
}

func (m *Mux) requireJoined(client *client, fn func() error) error {
	if client.playerID == "" {
		return game.UserError("join the game first")
	}

	return fn()
}

// userFacingMessage hides internal errors from clients
func userFacingMessage(err error) string {
	var userError game.UserError
	if errors.As(err, &userError) {
		return userError.Error()
	}

	logrus.WithError(err).Error("unexpected error")
	return "an unexpected error occurred"
}
