package game

import (
	"fmt"

	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

// MaxSeats is the maximum number of players in a single game
const MaxSeats = 6

// PlayerAction describes the last action a player took, for display purposes
type PlayerAction struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Player is a seated participant. Seat positions are assigned at join time
// and never renumbered; once a game has started a departing player is marked
// HasLeft instead of being removed so the turn-order arithmetic stays intact.
type Player struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	SeatPosition   int          `json:"seatPosition"`
	Coins          int          `json:"coins"`
	IsActive       bool         `json:"isActive"`
	IsDealer       bool         `json:"isDealer"`
	IsSmallBlind   bool         `json:"isSmallBlind"`
	IsBigBlind     bool         `json:"isBigBlind"`
	CallAmount     int          `json:"callAmount"`
	MinRaiseAmount int          `json:"minRaiseAmount"`
	LastAction     PlayerAction `json:"lastAction"`
	HoleCards      []*deck.Card `json:"holeCards"`
	HasLeft        bool         `json:"hasLeft"`
	HasLost        bool         `json:"hasLost"`

	// ConnectionID identifies the transport connection, it's never sent to clients
	ConnectionID string `json:"-"`
}

// IsEligible returns true if the player still takes part in turn-order walks
func (p *Player) IsEligible() bool {
	return !p.HasLeft && !p.HasLost
}

// PlayerUpdate is a patch applied to a player. Only non-nil fields are applied.
type PlayerUpdate struct {
	Coins          *int
	IsActive       *bool
	IsDealer       *bool
	IsSmallBlind   *bool
	IsBigBlind     *bool
	CallAmount     *int
	MinRaiseAmount *int
	LastAction     *PlayerAction
	HoleCards      []*deck.Card
	HasLeft        *bool
	HasLost        *bool
}

// playerDirectory owns every Player of a game. All mutation goes through
// UpdatePlayer.
type playerDirectory struct {
	players []*Player
}

func newPlayerDirectory() *playerDirectory {
	return &playerDirectory{
		players: make([]*Player, 0, MaxSeats),
	}
}

// AddPlayer seats a new player at the next position
func (d *playerDirectory) AddPlayer(id, name, connectionID string) (*Player, error) {
	if len(d.players) >= MaxSeats {
		return nil, ErrGameFull
	}

	player := &Player{
		ID:           id,
		Name:         name,
		SeatPosition: len(d.players) + 1,
		LastAction:   PlayerAction{Name: "Joined"},
		HoleCards:    []*deck.Card{},
		ConnectionID: connectionID,
	}

	d.players = append(d.players, player)
	return player, nil
}

// UpdatePlayer applies the patch field by field
func (d *playerDirectory) UpdatePlayer(id string, update PlayerUpdate) error {
	player := d.GetPlayer(id)
	if player == nil {
		return fmt.Errorf("player %s is not in the game", id)
	}

	if update.Coins != nil {
		player.Coins = *update.Coins
	}

	if update.IsActive != nil {
		player.IsActive = *update.IsActive
	}

	if update.IsDealer != nil {
		player.IsDealer = *update.IsDealer
	}

	if update.IsSmallBlind != nil {
		player.IsSmallBlind = *update.IsSmallBlind
	}

	if update.IsBigBlind != nil {
		player.IsBigBlind = *update.IsBigBlind
	}

	if update.CallAmount != nil {
		player.CallAmount = *update.CallAmount
	}

	if update.MinRaiseAmount != nil {
		player.MinRaiseAmount = *update.MinRaiseAmount
	}

	if update.LastAction != nil {
		player.LastAction = *update.LastAction
	}

	if update.HoleCards != nil {
		player.HoleCards = update.HoleCards
	}

	if update.HasLeft != nil {
		player.HasLeft = *update.HasLeft
	}

	if update.HasLost != nil {
		player.HasLost = *update.HasLost
	}

	return nil
}

// GetPlayer returns the player with the given ID, or nil
func (d *playerDirectory) GetPlayer(id string) *Player {
	for _, player := range d.players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// GetPlayerBySeat returns the player at the given seat position, or nil
func (d *playerDirectory) GetPlayerBySeat(position int) *Player {
	for _, player := range d.players {
		if player.SeatPosition == position {
			return player
		}
	}

	return nil
}

// AllPlayers returns the players in seat order
func (d *playerDirectory) AllPlayers() []*Player {
	players := make([]*Player, len(d.players))
	copy(players, d.players)
	return players
}

// EligiblePlayers returns the players still part of turn-order walks, in seat order
func (d *playerDirectory) EligiblePlayers() []*Player {
	players := make([]*Player, 0, len(d.players))
	for _, player := range d.players {
		if player.IsEligible() {
			players = append(players, player)
		}
	}

	return players
}

// OpponentPlayers returns every other player with their hole cards stripped
func (d *playerDirectory) OpponentPlayers(id string) []*Player {
	opponents := make([]*Player, 0, len(d.players))
	for _, player := range d.players {
		if player.ID == id {
			continue
		}

		opponent := *player
		opponent.HoleCards = []*deck.Card{}
		opponents = append(opponents, &opponent)
	}

	return opponents
}

// RemovePlayer deletes a player entirely and re-seats the remaining players
// so positions stay contiguous. Only legal before a game starts; after that
// players are marked HasLeft via UpdatePlayer.
func (d *playerDirectory) RemovePlayer(id string) {
	for i, player := range d.players {
		if player.ID == id {
			d.players = append(d.players[0:i], d.players[i+1:]...)

			for j, remaining := range d.players {
				remaining.SeatPosition = j + 1
			}
			return
		}
	}
}
