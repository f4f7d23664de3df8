package game

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// errors surfaced to callers
const (
	// ErrGameHasStarted is returned when an unknown player tries to join a running game
	ErrGameHasStarted = UserError("the game has already started")

	// ErrGameFull is returned when the maximum number of seats is taken
	ErrGameFull = UserError("game has reached maximum allowed players")

	// ErrPlayerLeft is returned when a player tries to rejoin after leaving
	ErrPlayerLeft = UserError("player has already left the game")

	// ErrNotEnoughPlayers is returned when a game is started with fewer than two players
	ErrNotEnoughPlayers = UserError("at least 2 players need to join before starting a game")
)
