package game

import (
	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

// Observer receives the outbound notifications a game raises. The engine
// knows nothing about transports; the hosting layer decides how events reach
// clients.
type Observer interface {
	// HandCompleted is raised when a hand is settled, by showdown or because
	// everyone else folded
	HandCompleted(e *HandCompletedEvent)

	// GameWon is raised when one player holds all the chips
	GameWon(e *GameWonEvent)

	// CommunityUpdated is raised when the community cards or the pot change
	CommunityUpdated(e *CommunityUpdatedEvent)

	// PlayerStateUpdated is raised once per connected player and carries
	// their own hole cards plus the opponent projection
	PlayerStateUpdated(e *PlayerStateEvent)
}

// HandWinner identifies a hand winner and their share of the pot
type HandWinner struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Payout   int    `json:"payout"`
}

// PlayerShowdown is the per-player data published when a hand completes.
// Folded players' hole cards stay hidden.
type PlayerShowdown struct {
	PlayerID   string       `json:"playerId"`
	Name       string       `json:"name"`
	LastAction PlayerAction `json:"lastAction"`
	HoleCards  []*deck.Card `json:"holeCards"`
	Folded     bool         `json:"folded"`
}

// HandCompletedEvent is raised after pot settlement
type HandCompletedEvent struct {
	GameID         string            `json:"gameId"`
	CommunityCards []*deck.Card      `json:"communityCards"`
	Pot            int               `json:"pot"`
	Winners        []HandWinner      `json:"winners"`
	WinExplanation string            `json:"winExplanation"`
	Reimbursements []Reimbursement   `json:"reimbursements"`
	Players        []*PlayerShowdown `json:"playerData"`
}

// GameWonEvent is raised when the game is over
type GameWonEvent struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// CommunityUpdatedEvent carries the shared table state
type CommunityUpdatedEvent struct {
	GameID         string       `json:"gameId"`
	CommunityCards []*deck.Card `json:"communityCards"`
	Pot            int          `json:"pot"`
}

// PlayerStateEvent carries one player's own view of the game. Opponents
// always have their hole cards stripped.
type PlayerStateEvent struct {
	GameID       string    `json:"gameId"`
	ConnectionID string    `json:"-"`
	Self         *Player   `json:"playerData"`
	Opponents    []*Player `json:"opponentsData"`
}

type nopObserver struct{}

func (nopObserver) HandCompleted(*HandCompletedEvent)       {}
func (nopObserver) GameWon(*GameWonEvent)                   {}
func (nopObserver) CommunityUpdated(*CommunityUpdatedEvent) {}
func (nopObserver) PlayerStateUpdated(*PlayerStateEvent)    {}
