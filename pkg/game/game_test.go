package game

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

type recordingObserver struct {
	handCompleted []*HandCompletedEvent
	gameWon       []*GameWonEvent
	community     []*CommunityUpdatedEvent
	playerStates  []*PlayerStateEvent
}

func (r *recordingObserver) HandCompleted(e *HandCompletedEvent) {
	r.handCompleted = append(r.handCompleted, e)
}

func (r *recordingObserver) GameWon(e *GameWonEvent) {
	r.gameWon = append(r.gameWon, e)
}

func (r *recordingObserver) CommunityUpdated(e *CommunityUpdatedEvent) {
	r.community = append(r.community, e)
}

func (r *recordingObserver) PlayerStateUpdated(e *PlayerStateEvent) {
	r.playerStates = append(r.playerStates, e)
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestGame seats the requested number of players as p1..pN
func newTestGame(t *testing.T, playerCount int) (*Game, *recordingObserver) {
	t.Helper()

	observer := &recordingObserver{}
	g := NewGame("game-1", DefaultOptions(), observer, testLogger())
	for i := 1; i <= playerCount; i++ {
		id := fmt.Sprintf("p%d", i)
		err := g.AddPlayer(id, fmt.Sprintf("Player %d", i), "conn-"+id)
		assert.NoError(t, err)
	}

	return g, observer
}

func TestGame_AddPlayer(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.Equal(StateWaitingForStart, g.State())

	// reconnect keeps the seat and rebinds the connection
	a.NoError(g.AddPlayer("p1", "Player 1", "conn-new"))
	a.Equal("conn-new", g.Player("p1").ConnectionID)
	a.Len(g.AllPlayers(), 2)

	a.NoError(g.InitializeGame())
	a.Equal(ErrGameHasStarted, g.AddPlayer("p3", "Player 3", "conn-p3"))

	// known players can still reconnect after the start
	a.NoError(g.AddPlayer("p2", "Player 2", "conn-p2-again"))
}

func TestGame_InitializeGame(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 1)
	a.Equal(ErrNotEnoughPlayers, g.InitializeGame())

	a.NoError(g.AddPlayer("p2", "Player 2", "conn-p2"))
	a.NoError(g.InitializeGame())
	a.Equal(StateStarted, g.State())

	for _, player := range g.AllPlayers() {
		a.Equal(1000, player.Coins)
	}

	a.Equal(ErrGameHasStarted, g.InitializeGame())
}

func TestGame_StartHandPostsBlindsHeadsUp(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())
	a.Equal(StateHandInProgress, g.State())

	p1 := g.Player("p1")
	p2 := g.Player("p2")

	// heads-up the dealer posts the big blind and the other seat the small
	a.True(p1.IsDealer)
	a.True(p1.IsBigBlind)
	a.True(p2.IsSmallBlind)
	a.Equal(980, p1.Coins)
	a.Equal(990, p2.Coins)
	a.Equal(30, g.Pot())

	// the small blind acts first and owes the difference
	a.Equal("p2", g.ActivePlayerID())
	a.True(p2.IsActive)
	a.Equal(10, p2.CallAmount)
	a.Equal(20, p2.MinRaiseAmount)

	a.Len(p1.HoleCards, 2)
	a.Len(p2.HoleCards, 2)
	a.Len(g.CommunityCards(), 0)
}

func TestGame_StartHandRequiresTwoEligiblePlayers(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.Error(g.StartHand(), "cannot start before initialization")

	a.NoError(g.InitializeGame())
	hasLost := true
	a.NoError(g.players.UpdatePlayer("p2", PlayerUpdate{HasLost: &hasLost}))
	a.Equal(ErrNotEnoughPlayers, g.StartHand())
}

func TestGame_PlayerActionFromInactivePlayerIsIgnored(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.Equal("p2", g.ActivePlayerID())
	a.NoError(g.PlayerAction("p1", ActionFold, 0))

	// nothing changed
	a.Equal("p2", g.ActivePlayerID())
	a.Equal(StateHandInProgress, g.State())
	a.False(g.hand.HasPlayerFolded("p1"))
}

func TestGame_CheckWithOutstandingBetIsRejected(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	err := g.PlayerAction("p2", ActionCheck, 0)
	a.Equal(UserError("cannot check, there is a bet to call"), err)
	a.Equal("p2", g.ActivePlayerID())
}

func TestGame_RaiseValidation(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.Equal(UserError("raise amount must be greater than zero"), g.PlayerAction("p2", ActionRaise, 0))
	a.Equal(UserError("insufficient coins to raise"), g.PlayerAction("p2", ActionRaise, 5000))
	a.Equal(UserError("raise is below the minimum raise amount"), g.PlayerAction("p2", ActionRaise, 5))

	// an all-in below the minimum raise is allowed
	a.NoError(g.PlayerAction("p2", ActionRaise, 980))
	a.Equal(0, g.Player("p2").Coins)
}

func TestGame_FoldAwardsPotToLastPlayerStanding(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.NoError(g.PlayerAction("p2", ActionFold, 0))

	a.Equal(StateHandEnded, g.State())
	a.Equal(1010, g.Player("p1").Coins)
	a.Equal(990, g.Player("p2").Coins)

	a.Len(observer.handCompleted, 1)
	event := observer.handCompleted[0]
	a.Equal("All other players folded", event.WinExplanation)
	a.Equal([]HandWinner{{PlayerID: "p1", Name: "Player 1", Payout: 30}}, event.Winners)
	a.Empty(event.Reimbursements)

	// the minimum bet escalates for the next hand
	a.Equal(40, g.MinBet())
}

func TestGame_DealerRotatesBetweenHands(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())
	a.True(g.Player("p1").IsDealer)

	a.NoError(g.PlayerAction("p2", ActionFold, 0))
	a.NoError(g.StartHand())

	// the button moves and the blinds follow the doubled minimum bet
	a.True(g.Player("p2").IsDealer)
	a.True(g.Player("p1").IsSmallBlind)
	a.Equal("p1", g.ActivePlayerID())
	a.Equal(20, g.Player("p1").CallAmount)
	a.Equal(60, g.Pot())
}

func TestGame_BettingRoundAdvancesToFlop(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 3)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	// dealer p1, small blind p2, big blind p3, first to act p1
	a.Equal("p1", g.ActivePlayerID())

	a.NoError(g.PlayerAction("p1", ActionCall, 0))
	a.Equal("p2", g.ActivePlayerID())

	a.NoError(g.PlayerAction("p2", ActionCall, 0))
	a.Equal("p3", g.ActivePlayerID())

	// the big blind has nothing to call and may check
	a.Equal(0, g.Player("p3").CallAmount)
	a.NoError(g.PlayerAction("p3", ActionCheck, 0))

	a.Equal(HandStateFlop, g.hand.State())
	a.Len(g.CommunityCards(), 3)
	a.Equal(60, g.Pot())

	// post-flop action starts after the dealer
	a.Equal("p2", g.ActivePlayerID())

	last := observer.community[len(observer.community)-1]
	a.Len(last.CommunityCards, 3)
	a.Equal(60, last.Pot)
}

func TestGame_RaiseReopensTheAction(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 3)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.NoError(g.PlayerAction("p1", ActionCall, 0))
	a.NoError(g.PlayerAction("p2", ActionCall, 0))
	a.NoError(g.PlayerAction("p3", ActionCheck, 0))
	a.Equal(HandStateFlop, g.hand.State())

	a.NoError(g.PlayerAction("p2", ActionCheck, 0))
	a.NoError(g.PlayerAction("p3", ActionRaise, 40))

	// p2's check no longer counts, everyone must respond to the raise
	a.Equal([]string{"p3"}, g.hand.BetAgreedPlayers())
	a.Equal("p1", g.ActivePlayerID())
	a.Equal(40, g.Player("p1").CallAmount)

	a.NoError(g.PlayerAction("p1", ActionCall, 0))
	a.NoError(g.PlayerAction("p2", ActionCall, 0))

	a.Equal(HandStateTurn, g.hand.State())
	a.Len(g.CommunityCards(), 4)
	a.Equal(180, g.Pot())
}

// riggedShowdown drives a heads-up game to the river with the given board and
// hole cards, then checks it down to the showdown.
func riggedShowdown(t *testing.T, g *Game, board, p1Cards, p2Cards string) {
	t.Helper()
	a := assert.New(t)

	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	// equalize the blinds, then jump straight to the river
	a.NoError(g.PlayerAction("p2", ActionCall, 0))
	g.hand.state = HandStateRiver
	g.hand.communityCards = deck.CardsFromString(board)
	g.hand.ClearBetAgreedPlayers()

	a.NoError(g.players.UpdatePlayer("p1", PlayerUpdate{HoleCards: deck.CardsFromString(p1Cards)}))
	a.NoError(g.players.UpdatePlayer("p2", PlayerUpdate{HoleCards: deck.CardsFromString(p2Cards)}))

	a.NoError(g.PlayerAction("p1", ActionCheck, 0))
	a.NoError(g.PlayerAction("p2", ActionCheck, 0))
}

func TestGame_ShowdownAwardsPotToBestHand(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 2)

	// both make two pair off the board, p1's king pair wins the tie-break
	riggedShowdown(t, g, "10c,10d,6h,6s,13c", "13d,3h", "9c,2s")

	a.Equal(StateHandEnded, g.State())
	a.Equal(1020, g.Player("p1").Coins)
	a.Equal(980, g.Player("p2").Coins)

	a.Len(observer.handCompleted, 1)
	event := observer.handCompleted[0]
	a.Equal("Two Pair", event.WinExplanation)
	a.Equal([]HandWinner{{PlayerID: "p1", Name: "Player 1", Payout: 40}}, event.Winners)

	// showdown reveals the hole cards of everyone who did not fold
	for _, showdown := range event.Players {
		a.False(showdown.Folded)
		a.Len(showdown.HoleCards, 2)
	}
}

func TestGame_ShowdownSplitsPotBetweenCoWinners(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 2)

	// identical hand strength and no uniquely held hole card rank
	riggedShowdown(t, g, "10c,10d,6h,6s,13c", "3h,2c", "3d,2s")

	a.Equal(1000, g.Player("p1").Coins)
	a.Equal(1000, g.Player("p2").Coins)

	event := observer.handCompleted[0]
	a.Len(event.Winners, 2)
	a.Equal(20, event.Winners[0].Payout)
	a.Equal(20, event.Winners[1].Payout)
}

func TestGame_GameWonWhenOnePlayerRemains(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	// p2 is down to the felt and gives up the hand
	coins := 0
	a.NoError(g.players.UpdatePlayer("p2", PlayerUpdate{Coins: &coins}))
	a.NoError(g.PlayerAction("p2", ActionFold, 0))

	a.Equal(StateGameOver, g.State())
	a.True(g.Player("p2").HasLost)

	winner := g.Winner()
	a.NotNil(winner)
	a.Equal("p1", winner.ID)

	a.Len(observer.gameWon, 1)
	a.Equal("p1", observer.gameWon[0].PlayerID)
}

func TestGame_RemovePlayerBeforeStartFreesTheSeat(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 3)
	a.NoError(g.RemovePlayer("p2"))
	a.Len(g.AllPlayers(), 2)

	// the seat can be taken again
	a.NoError(g.AddPlayer("p4", "Player 4", "conn-p4"))
	a.Equal(3, g.Player("p4").SeatPosition)
}

func TestGame_RemoveActivePlayerMidHandAdvancesTheTurn(t *testing.T) {
	a := assert.New(t)

	g, _ := newTestGame(t, 3)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.Equal("p1", g.ActivePlayerID())
	a.NoError(g.RemovePlayer("p1"))

	p1 := g.Player("p1")
	a.True(p1.HasLeft)
	a.True(g.hand.HasPlayerFolded("p1"))
	a.Equal("p2", g.ActivePlayerID())

	// a departed player cannot rejoin
	a.Equal(ErrPlayerLeft, g.AddPlayer("p1", "Player 1", "conn-back"))
}

func TestGame_RemoveFoldedPlayerKeepsTheHandGoing(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 3)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	a.NoError(g.PlayerAction("p1", ActionFold, 0))
	a.Equal("p2", g.ActivePlayerID())

	// leaving after folding must not end the hand for the players still in
	a.NoError(g.RemovePlayer("p1"))
	a.Equal(StateHandInProgress, g.State())
	a.Equal("p2", g.ActivePlayerID())

	a.NoError(g.PlayerAction("p2", ActionCall, 0))
	a.Equal(StateHandInProgress, g.State())
	a.Equal("p3", g.ActivePlayerID())
	a.Len(observer.handCompleted, 0)

	// the big blind checks and the flop is dealt
	a.NoError(g.PlayerAction("p3", ActionCheck, 0))
	a.Equal(StateHandInProgress, g.State())
	a.Len(g.CommunityCards(), 3)
	a.Equal(40, g.Pot())
	a.Len(observer.handCompleted, 0)
}

func TestGame_RemoveLastOpponentEndsTheHand(t *testing.T) {
	a := assert.New(t)

	g, observer := newTestGame(t, 2)
	a.NoError(g.InitializeGame())
	a.NoError(g.StartHand())

	// the big blind leaves while the small blind is on the clock
	a.NoError(g.RemovePlayer("p1"))

	a.Len(observer.handCompleted, 1)
	a.Equal("p2", observer.handCompleted[0].Winners[0].PlayerID)
	a.Equal(StateGameOver, g.State())
	a.Equal("p2", g.Winner().ID)
}
