package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/holdem"
)

// State is the lifecycle state of a game
type State string

// game states
const (
	StateWaitingForStart State = "waitingForStart"
	StateStarted         State = "started"
	StateHandInProgress  State = "handInProgress"
	StateHandEnded       State = "handEnded"
	StateGameOver        State = "gameOver"
)

// Options configures a game
type Options struct {
	// MinBet is the big blind of the first hand
	MinBet int

	// StartingChips is each player's stack when the game is initialized
	StartingChips int

	// MinBetMultiplier scales the minimum bet after every completed hand
	MinBetMultiplier int
}

// DefaultOptions returns the default game options
func DefaultOptions() Options {
	return Options{
		MinBet:           20,
		StartingChips:    1000,
		MinBetMultiplier: 2,
	}
}

// Game runs one table of Texas Hold'em. It owns the player directory and the
// current hand, computes the turn order, and settles pots. A Game is not safe
// for concurrent use; the hosting layer serializes access.
type Game struct {
	id             string
	state          State
	dealerSeat     int
	activePlayerID string
	minBet         int
	startingChips  int
	minBetFactor   int
	players        *playerDirectory
	hand           *Hand
	observer       Observer
	winnerID       string

	log logrus.FieldLogger
}

// NewGame returns a game waiting for players to join
func NewGame(id string, opts Options, observer Observer, logger logrus.FieldLogger) *Game {
	if observer == nil {
		observer = nopObserver{}
	}

	defaults := DefaultOptions()
	if opts.MinBet <= 0 {
		opts.MinBet = defaults.MinBet
	}

	if opts.StartingChips <= 0 {
		opts.StartingChips = defaults.StartingChips
	}

	if opts.MinBetMultiplier <= 1 {
		opts.MinBetMultiplier = defaults.MinBetMultiplier
	}

	return &Game{
		id:            id,
		state:         StateWaitingForStart,
		minBet:        opts.MinBet,
		startingChips: opts.StartingChips,
		minBetFactor:  opts.MinBetMultiplier,
		players:       newPlayerDirectory(),
		observer:      observer,
		log:           logger.WithField("game", id),
	}
}

// ID returns the game identifier
func (g *Game) ID() string {
	return g.id
}

// State returns the lifecycle state
func (g *Game) State() State {
	return g.state
}

// MinBet returns the minimum bet of the current hand
func (g *Game) MinBet() int {
	return g.minBet
}

// ActivePlayerID returns the player currently obligated to act, or ""
func (g *Game) ActivePlayerID() string {
	return g.activePlayerID
}

// Winner returns the overall game winner, or nil while the game is running
func (g *Game) Winner() *Player {
	if g.winnerID == "" {
		return nil
	}

	return g.players.GetPlayer(g.winnerID)
}

// Player returns a player by ID, or nil
func (g *Game) Player(id string) *Player {
	return g.players.GetPlayer(id)
}

// AllPlayers returns every seated player in seat order
func (g *Game) AllPlayers() []*Player {
	return g.players.AllPlayers()
}

// EligiblePlayers returns the players still in the running, in seat order
func (g *Game) EligiblePlayers() []*Player {
	return g.players.EligiblePlayers()
}

// CommunityCards returns the revealed community cards of the current hand
func (g *Game) CommunityCards() []*deck.Card {
	if g.hand == nil {
		return []*deck.Card{}
	}

	return g.hand.CommunityCards()
}

// Pot returns the chips in the current hand's pot
func (g *Game) Pot() int {
	if g.hand == nil {
		return 0
	}

	return g.hand.PotTotal()
}

// AddPlayer seats a player, or re-binds the connection of a known player.
// Unknown players cannot join once the game has started, and a player who
// left cannot rejoin.
func (g *Game) AddPlayer(playerID, name, connectionID string) error {
	if existing := g.players.GetPlayer(playerID); existing != nil {
		if existing.HasLeft {
			return ErrPlayerLeft
		}

		existing.ConnectionID = connectionID
		g.log.WithField("player", existing.Name).Info("player reconnected")
		g.emitPlayerStates()
		return nil
	}

	if g.state != StateWaitingForStart {
		return ErrGameHasStarted
	}

	player, err := g.players.AddPlayer(playerID, name, connectionID)
	if err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{
		"player": player.Name,
		"seat":   player.SeatPosition,
	}).Info("player joined")

	g.emitPlayerStates()
	return nil
}

// RemovePlayer takes a player out of the game. Before the game starts the
// seat is freed and the remaining players are re-seated; afterwards the
// player is marked as having left and their hand, if any, is folded.
func (g *Game) RemovePlayer(playerID string) error {
	player := g.players.GetPlayer(playerID)
	if player == nil {
		return fmt.Errorf("player %s is not in the game", playerID)
	}

	if g.state == StateWaitingForStart {
		g.players.RemovePlayer(playerID)
		g.log.WithField("player", player.Name).Info("player left before start")
		g.emitPlayerStates()
		return nil
	}

	hasLeft := true
	_ = g.players.UpdatePlayer(playerID, PlayerUpdate{HasLeft: &hasLeft})
	g.log.WithField("player", player.Name).Info("player left the game")

	if g.state == StateHandInProgress {
		// record the exit even when the player already folded, the
		// agreement predicates offset folds by exits
		g.hand.AddToFolded(playerID)
		g.hand.AddToExited(playerID)

		wasActive := g.activePlayerID == playerID
		if wasActive {
			return g.resolveTurn(player.SeatPosition)
		}

		// a departure can complete the agreement on its own
		return g.resolveIfSettled()
	}

	g.emitPlayerStates()
	return nil
}

// InitializeGame distributes the starting chips and closes the table to new
// players. At least two players must have joined.
func (g *Game) InitializeGame() error {
	if g.state != StateWaitingForStart {
		return ErrGameHasStarted
	}

	players := g.players.AllPlayers()
	if len(players) < 2 {
		return ErrNotEnoughPlayers
	}

	for _, player := range players {
		coins := g.startingChips
		_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{Coins: &coins})
	}

	g.state = StateStarted
	g.log.WithField("players", len(players)).Info("game initialized")
	g.emitPlayerStates()
	return nil
}

// StartHand deals a new hand: the dealer button moves to the next eligible
// seat, the blinds are posted, hole cards are dealt, and the player after the
// big blind is put on the clock.
func (g *Game) StartHand() error {
	if g.state != StateStarted && g.state != StateHandEnded {
		return fmt.Errorf("cannot start a hand in state %s", g.state)
	}

	if len(g.players.EligiblePlayers()) < 2 {
		return ErrNotEnoughPlayers
	}

	g.hand = NewHand()
	g.hand.Initialize()

	dealer := g.nextEligiblePlayer(g.dealerSeat)
	g.dealerSeat = dealer.SeatPosition
	smallBlind := g.nextEligiblePlayer(dealer.SeatPosition)
	bigBlind := g.nextEligiblePlayer(smallBlind.SeatPosition)
	firstToAct := g.nextEligiblePlayer(bigBlind.SeatPosition)

	for _, player := range g.players.AllPlayers() {
		update := PlayerUpdate{
			IsActive:       boolPtr(false),
			IsDealer:       boolPtr(player.ID == dealer.ID),
			IsSmallBlind:   boolPtr(player.ID == smallBlind.ID),
			IsBigBlind:     boolPtr(player.ID == bigBlind.ID),
			CallAmount:     intPtr(0),
			MinRaiseAmount: intPtr(g.minBet),
			LastAction:     &PlayerAction{Name: "Waiting"},
			HoleCards:      []*deck.Card{},
		}
		_ = g.players.UpdatePlayer(player.ID, update)
	}

	for _, player := range g.players.EligiblePlayers() {
		cards, err := g.hand.DrawHoleCards()
		if err != nil {
			return err
		}

		_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{HoleCards: cards})

		// everyone starts on the ledger so settlement sees all contributors
		g.hand.AddPlayerContribution(player.ID, 0)
	}

	g.postBlind(smallBlind, g.minBet/2, "Small Blind")
	g.postBlind(bigBlind, g.minBet, "Big Blind")

	g.activatePlayer(firstToAct.ID)
	g.state = StateHandInProgress

	g.log.WithFields(logrus.Fields{
		"dealer":     dealer.Name,
		"smallBlind": smallBlind.Name,
		"bigBlind":   bigBlind.Name,
		"minBet":     g.minBet,
	}).Info("hand started")

	g.emitCommunityState()
	g.emitPlayerStates()
	return nil
}

// PlayerAction applies a betting action from the active player. Actions from
// any other player are logged and ignored.
func (g *Game) PlayerAction(playerID string, action Action, amount int) error {
	if g.state != StateHandInProgress {
		return UserError("no hand is in progress")
	}

	player := g.players.GetPlayer(playerID)
	if player == nil {
		return fmt.Errorf("player %s is not in the game", playerID)
	}

	if playerID != g.activePlayerID {
		g.log.WithFields(logrus.Fields{
			"player": player.Name,
			"action": action,
		}).Warn("ignoring action from inactive player")
		return nil
	}

	switch action {
	case ActionCheck:
		if g.hand.MinCallAmount(playerID, player.Coins) > 0 {
			return UserError("cannot check, there is a bet to call")
		}

		g.hand.AddToBetAgreement(playerID)
		g.setLastAction(player, PlayerAction{Name: "Checked"})

	case ActionCall:
		callAmount := g.hand.MinCallAmount(playerID, player.Coins)
		g.contribute(player, callAmount)
		g.hand.AddToBetAgreement(playerID)
		g.setLastAction(player, PlayerAction{Name: "Called", Value: callAmount})

	case ActionFold:
		g.hand.AddToFolded(playerID)
		g.setLastAction(player, PlayerAction{Name: "Folded"})

	case ActionRaise:
		callAmount := g.hand.MinCallAmount(playerID, player.Coins)
		if amount <= 0 {
			return UserError("raise amount must be greater than zero")
		}

		if callAmount+amount > player.Coins {
			return UserError("insufficient coins to raise")
		}

		allIn := callAmount+amount == player.Coins
		if amount < player.MinRaiseAmount && !allIn {
			return UserError("raise is below the minimum raise amount")
		}

		g.contribute(player, callAmount+amount)

		// a raise reopens the action for everyone else
		g.hand.ClearBetAgreedPlayers()
		g.hand.AddToBetAgreement(playerID)
		g.setLastAction(player, PlayerAction{Name: "Raised", Value: amount})

	default:
		return UserError(fmt.Sprintf("%s is not a valid action", action))
	}

	g.log.WithFields(logrus.Fields{
		"player": player.Name,
		"action": action,
		"amount": amount,
	}).Info("player action")

	return g.resolveTurn(player.SeatPosition)
}

// resolveTurn decides what happens after the player at fromSeat acted: the
// hand completes, the betting state advances, or the next player is put on
// the clock.
func (g *Game) resolveTurn(fromSeat int) error {
	eligible := g.players.EligiblePlayers()

	if g.hand.HasEveryoneElseFolded(len(eligible)) {
		for _, player := range eligible {
			if !g.hand.HasPlayerFolded(player.ID) {
				g.hand.SetAutomaticWinner(player.ID)
				break
			}
		}

		return g.completeHand()
	}

	if g.hand.HavePlayersAgreedOnBet(len(eligible)) {
		return g.advanceAfterAgreement()
	}

	next := g.nextActionablePlayer(fromSeat)
	if next == nil {
		return fmt.Errorf("no player left to act in state %s", g.hand.State())
	}

	g.activatePlayer(next.ID)
	g.emitPlayerStates()
	return nil
}

// resolveIfSettled re-runs the settlement predicates without advancing the
// turn. Used when a non-active player leaves mid-hand.
func (g *Game) resolveIfSettled() error {
	eligible := g.players.EligiblePlayers()

	if g.hand.HasEveryoneElseFolded(len(eligible)) {
		for _, player := range eligible {
			if !g.hand.HasPlayerFolded(player.ID) {
				g.hand.SetAutomaticWinner(player.ID)
				break
			}
		}

		return g.completeHand()
	}

	if g.hand.HavePlayersAgreedOnBet(len(eligible)) {
		return g.advanceAfterAgreement()
	}

	g.emitPlayerStates()
	return nil
}

// advanceAfterAgreement moves to the next betting state, or to showdown when
// the river betting is settled. Post-flop action starts at the first
// actionable seat after the dealer.
func (g *Game) advanceAfterAgreement() error {
	if g.hand.State() == HandStateRiver {
		return g.completeHand()
	}

	if err := g.hand.SetState(nextHandState[g.hand.State()]); err != nil {
		return err
	}

	g.hand.ClearBetAgreedPlayers()

	next := g.nextActionablePlayer(g.dealerSeat)
	if next == nil {
		return fmt.Errorf("no player left to act in state %s", g.hand.State())
	}

	g.activatePlayer(next.ID)

	g.log.WithFields(logrus.Fields{
		"state": g.hand.State(),
		"pot":   g.hand.PotTotal(),
	}).Info("betting state advanced")

	g.emitCommunityState()
	g.emitPlayerStates()
	return nil
}

// completeHand settles the pot, publishes the outcome, retires broke players
// and either ends the game or arms the next hand.
func (g *Game) completeHand() error {
	winners, explanation, err := g.determineWinners()
	if err != nil {
		return err
	}

	event := &HandCompletedEvent{
		GameID:         g.id,
		CommunityCards: g.hand.CommunityCards(),
		Pot:            g.hand.PotTotal(),
		WinExplanation: explanation,
		Reimbursements: []Reimbursement{},
	}

	if len(winners) == 1 {
		settlement := g.hand.Settle(winners[0].ID)
		g.creditPlayer(winners[0], settlement.WinnerPayout)
		event.Winners = []HandWinner{{
			PlayerID: winners[0].ID,
			Name:     winners[0].Name,
			Payout:   settlement.WinnerPayout,
		}}

		for _, r := range settlement.Reimbursements {
			g.creditPlayer(g.players.GetPlayer(r.PlayerID), r.Amount)
		}

		event.Reimbursements = settlement.Reimbursements
	} else {
		// co-winners split the pot evenly, any remainder goes to the
		// earliest seat
		share := g.hand.PotTotal() / len(winners)
		remainder := g.hand.PotTotal() % len(winners)
		for i, winner := range winners {
			payout := share
			if i == 0 {
				payout += remainder
			}

			g.creditPlayer(winner, payout)
			event.Winners = append(event.Winners, HandWinner{
				PlayerID: winner.ID,
				Name:     winner.Name,
				Payout:   payout,
			})
		}
	}

	for _, player := range g.players.EligiblePlayers() {
		showdown := &PlayerShowdown{
			PlayerID:   player.ID,
			Name:       player.Name,
			LastAction: player.LastAction,
			HoleCards:  []*deck.Card{},
			Folded:     g.hand.HasPlayerFolded(player.ID),
		}

		// folded players never show their cards
		if !showdown.Folded {
			showdown.HoleCards = player.HoleCards
		}

		event.Players = append(event.Players, showdown)
	}

	g.activePlayerID = ""
	for _, player := range g.players.AllPlayers() {
		_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{
			IsActive:   boolPtr(false),
			CallAmount: intPtr(0),
		})
	}

	for _, player := range g.players.EligiblePlayers() {
		if player.Coins <= 0 {
			hasLost := true
			_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{HasLost: &hasLost})
			g.log.WithField("player", player.Name).Info("player is out of coins")
		}
	}

	g.observer.HandCompleted(event)

	remaining := g.players.EligiblePlayers()
	if len(remaining) == 1 {
		g.winnerID = remaining[0].ID
		g.state = StateGameOver
		g.log.WithField("player", remaining[0].Name).Info("game won")
		g.observer.GameWon(&GameWonEvent{
			GameID:   g.id,
			PlayerID: remaining[0].ID,
			Name:     remaining[0].Name,
		})
		g.emitPlayerStates()
		return nil
	}

	g.minBet *= g.minBetFactor
	g.state = StateHandEnded
	g.emitPlayerStates()
	return nil
}

// determineWinners resolves the hand's winners: the automatic winner when
// everyone else folded, or the showdown outcome otherwise.
func (g *Game) determineWinners() ([]*Player, string, error) {
	if winnerID := g.hand.AutomaticWinner(); winnerID != "" {
		winner := g.players.GetPlayer(winnerID)
		return []*Player{winner}, "All other players folded", nil
	}

	contenders := make([]holdem.ShowdownPlayer, 0)
	for _, player := range g.players.EligiblePlayers() {
		if g.hand.HasPlayerFolded(player.ID) {
			continue
		}

		contenders = append(contenders, holdem.ShowdownPlayer{
			ID:        player.ID,
			Name:      player.Name,
			HoleCards: player.HoleCards,
		})
	}

	outcome, err := holdem.GetWinners(contenders, g.hand.CommunityCards())
	if err != nil {
		return nil, "", err
	}

	winners := make([]*Player, len(outcome.Winners))
	for i, winner := range outcome.Winners {
		winners[i] = g.players.GetPlayer(winner.ID)
	}

	return winners, outcome.WinningRankMessage, nil
}

// contribute moves chips from a player's stack into the pot
func (g *Game) contribute(player *Player, amount int) {
	if amount <= 0 {
		return
	}

	coins := player.Coins - amount
	_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{Coins: &coins})
	g.hand.AddPlayerContribution(player.ID, amount)
	g.hand.AddToPot(amount)
}

// postBlind posts a forced bet, going all-in when the stack is short
func (g *Game) postBlind(player *Player, amount int, name string) {
	if amount > player.Coins {
		amount = player.Coins
	}

	g.contribute(player, amount)
	g.setLastAction(player, PlayerAction{Name: name, Value: amount})
}

// activatePlayer puts a player on the clock and refreshes their call and
// raise obligations
func (g *Game) activatePlayer(playerID string) {
	for _, player := range g.players.AllPlayers() {
		isActive := player.ID == playerID
		update := PlayerUpdate{IsActive: &isActive}
		if isActive {
			update.CallAmount = intPtr(g.hand.MinCallAmount(player.ID, player.Coins))
			update.MinRaiseAmount = intPtr(g.minBet)
		}

		_ = g.players.UpdatePlayer(player.ID, update)
	}

	g.activePlayerID = playerID
}

// nextEligiblePlayer walks the seats clockwise from the given position and
// returns the first eligible player. The caller guarantees at least one
// eligible player exists.
func (g *Game) nextEligiblePlayer(fromSeat int) *Player {
	total := len(g.players.AllPlayers())
	for i := 1; i <= total; i++ {
		seat := (fromSeat+i-1)%total + 1
		player := g.players.GetPlayerBySeat(seat)
		if player != nil && player.IsEligible() {
			return player
		}
	}

	return nil
}

// nextActionablePlayer walks the seats clockwise from the given position and
// returns the first eligible player who still has to act this betting state
func (g *Game) nextActionablePlayer(fromSeat int) *Player {
	total := len(g.players.AllPlayers())
	for i := 1; i <= total; i++ {
		seat := (fromSeat+i-1)%total + 1
		player := g.players.GetPlayerBySeat(seat)
		if player != nil && player.IsEligible() && g.hand.DoesPlayerNeedToTakeAction(player.ID) {
			return player
		}
	}

	return nil
}

func (g *Game) setLastAction(player *Player, action PlayerAction) {
	_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{LastAction: &action})
}

func (g *Game) creditPlayer(player *Player, amount int) {
	if player == nil || amount <= 0 {
		return
	}

	coins := player.Coins + amount
	_ = g.players.UpdatePlayer(player.ID, PlayerUpdate{Coins: &coins})
}

// emitPlayerStates publishes each connected player's private view
func (g *Game) emitPlayerStates() {
	for _, player := range g.players.AllPlayers() {
		if player.ConnectionID == "" || player.HasLeft {
			continue
		}

		self := *player
		g.observer.PlayerStateUpdated(&PlayerStateEvent{
			GameID:       g.id,
			ConnectionID: player.ConnectionID,
			Self:         &self,
			Opponents:    g.players.OpponentPlayers(player.ID),
		})
	}
}

// emitCommunityState publishes the shared table state
func (g *Game) emitCommunityState() {
	g.observer.CommunityUpdated(&CommunityUpdatedEvent{
		GameID:         g.id,
		CommunityCards: g.hand.CommunityCards(),
		Pot:            g.hand.PotTotal(),
	})
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}
