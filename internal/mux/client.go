package mux

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is a websocket connection to a single game
type client struct {
	// conn is the underlying websocket connection
	conn *websocket.Conn

	// connectionID uniquely identifies this connection for event routing
	connectionID string

	gameID   string
	playerID string

	// send is a channel for sending messages to the client
	send chan interface{}

	// close is a channel for closing the client with a reason
	close chan string

	// closeError contains the reason why the connection was closed
	closeError error
}

func newPlayerID() string {
	return uuid.New().String()
}

func newClient(conn *websocket.Conn, gameID string) *client {
	return &client{
		conn:         conn,
		connectionID: uuid.New().String(),
		gameID:       gameID,
		send:         make(chan interface{}, 256),
		close:        make(chan string),
	}
}

// Send queues a message for the client. Slow clients drop messages rather
// than stalling the hub.
func (c *client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// String returns a traceable identifier for the connection
func (c *client) String() string {
	return fmt.Sprintf("%s:%s", c.connectionID, c.gameID)
}

// payloadIn is the format we expect from the JS client
type payloadIn struct {
	Action       string `json:"action"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	PlayerAction string `json:"playerAction"`
	Amount       int    `json:"amount"`

	// Context will be passed back on any outgoing message
	Context string `json:"context"`
}

// response is a message sent to the client
type response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data,omitempty"`
	Context string      `json:"context,omitempty"`
}

// ok returns a generic success response
func ok(ctx string, data interface{}) *response {
	return &response{
		Key:     "status",
		Value:   "OK",
		Data:    data,
		Context: ctx,
	}
}

func errorMessage(ctx, msg string) *response {
	return &response{
		Key:     "error",
		Value:   msg,
		Context: ctx,
	}
}
