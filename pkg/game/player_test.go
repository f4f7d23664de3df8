package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

func TestPlayerDirectory_AddPlayer(t *testing.T) {
	a := assert.New(t)

	dir := newPlayerDirectory()
	for i := 1; i <= MaxSeats; i++ {
		player, err := dir.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "")
		a.NoError(err)
		a.Equal(i, player.SeatPosition)
		a.Equal("Joined", player.LastAction.Name)
	}

	_, err := dir.AddPlayer("p7", "Player 7", "")
	a.Equal(ErrGameFull, err)
	a.Len(dir.AllPlayers(), MaxSeats)
}

func TestPlayerDirectory_UpdatePlayer(t *testing.T) {
	a := assert.New(t)

	dir := newPlayerDirectory()
	_, err := dir.AddPlayer("p1", "Alice", "")
	a.NoError(err)

	coins := 500
	isDealer := true
	a.NoError(dir.UpdatePlayer("p1", PlayerUpdate{Coins: &coins, IsDealer: &isDealer}))

	player := dir.GetPlayer("p1")
	a.Equal(500, player.Coins)
	a.True(player.IsDealer)
	a.Equal("Alice", player.Name, "untouched fields keep their value")

	a.Error(dir.UpdatePlayer("unknown", PlayerUpdate{Coins: &coins}))
}

func TestPlayerDirectory_EligiblePlayers(t *testing.T) {
	a := assert.New(t)

	dir := newPlayerDirectory()
	for i := 1; i <= 3; i++ {
		_, err := dir.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "")
		a.NoError(err)
	}

	hasLeft := true
	a.NoError(dir.UpdatePlayer("p1", PlayerUpdate{HasLeft: &hasLeft}))

	hasLost := true
	a.NoError(dir.UpdatePlayer("p2", PlayerUpdate{HasLost: &hasLost}))

	eligible := dir.EligiblePlayers()
	a.Len(eligible, 1)
	a.Equal("p3", eligible[0].ID)
}

func TestPlayerDirectory_OpponentPlayersStripHoleCards(t *testing.T) {
	a := assert.New(t)

	dir := newPlayerDirectory()
	_, _ = dir.AddPlayer("p1", "Alice", "")
	_, _ = dir.AddPlayer("p2", "Bob", "")

	a.NoError(dir.UpdatePlayer("p2", PlayerUpdate{HoleCards: deck.CardsFromString("1h,13s")}))

	opponents := dir.OpponentPlayers("p1")
	a.Len(opponents, 1)
	a.Equal("p2", opponents[0].ID)
	a.Empty(opponents[0].HoleCards)

	// the directory's own record keeps its cards
	a.Len(dir.GetPlayer("p2").HoleCards, 2)
}

func TestPlayerDirectory_RemovePlayerReseats(t *testing.T) {
	a := assert.New(t)

	dir := newPlayerDirectory()
	for i := 1; i <= 4; i++ {
		_, err := dir.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "")
		a.NoError(err)
	}

	dir.RemovePlayer("p2")

	players := dir.AllPlayers()
	a.Len(players, 3)
	for i, id := range []string{"p1", "p3", "p4"} {
		a.Equal(id, players[i].ID)
		a.Equal(i+1, players[i].SeatPosition)
	}

	a.Nil(dir.GetPlayer("p2"))
	a.Nil(dir.GetPlayerBySeat(4))
}
