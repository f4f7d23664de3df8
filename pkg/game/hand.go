package game

import (
	"fmt"

	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

// HandState is the betting state of a single hand
type HandState string

// betting states, strictly forward
const (
	HandStatePreFlop HandState = "preFlopBet"
	HandStateFlop    HandState = "flopBet"
	HandStateTurn    HandState = "turnBet"
	HandStateRiver   HandState = "riverBet"
)

var nextHandState = map[HandState]HandState{
	HandStatePreFlop: HandStateFlop,
	HandStateFlop:    HandStateTurn,
	HandStateTurn:    HandStateRiver,
}

// contribution is a player's chip ledger for one hand. The per-state
// breakdown exists for display; settlement only uses the hand-lifetime total.
type contribution struct {
	playerID string
	total    int
	byState  map[HandState]int
}

// Hand is a single deal: the deck, the community cards, the contribution
// ledger and the fold/agreement bookkeeping for the betting rounds.
// A Hand is owned by exactly one Game and replaced on every new deal.
type Hand struct {
	state             HandState
	communityCards    []*deck.Card
	deck              *deck.Deck
	contributions     []*contribution
	foldedPlayers     []string
	betAgreedPlayers  []string
	exitedPlayers     []string
	pot               int
	automaticWinnerID string
}

// NewHand returns a hand in the pre-flop state with an unshuffled deck
func NewHand() *Hand {
	return &Hand{
		state:          HandStatePreFlop,
		communityCards: make([]*deck.Card, 0, 5),
		deck:           deck.New(),
	}
}

// Initialize shuffles the deck. Hole cards are drawn lazily as each player's
// starting hand is assigned by the game.
func (h *Hand) Initialize() {
	h.deck.Shuffle()
}

// State returns the current betting state
func (h *Hand) State() HandState {
	return h.state
}

// SetState advances the betting state and reveals community cards:
// three on the flop, one each on the turn and the river
func (h *Hand) SetState(state HandState) error {
	if nextHandState[h.state] != state {
		return fmt.Errorf("cannot advance hand from %s to %s", h.state, state)
	}

	var draw int
	switch state {
	case HandStateFlop:
		draw = 3
	case HandStateTurn, HandStateRiver:
		draw = 1
	}

	cards, err := h.deck.Draw(draw)
	if err != nil {
		return err
	}

	h.communityCards = append(h.communityCards, cards...)
	h.state = state
	return nil
}

// DrawHoleCards removes two cards from the deck for a player's starting hand
func (h *Hand) DrawHoleCards() ([]*deck.Card, error) {
	return h.deck.Draw(2)
}

// CommunityCards returns a copy of the revealed community cards
func (h *Hand) CommunityCards() []*deck.Card {
	cards := make([]*deck.Card, len(h.communityCards))
	copy(cards, h.communityCards)
	return cards
}

// PotTotal returns the chips in the pot
func (h *Hand) PotTotal() int {
	return h.pot
}

// AddToPot adds chips to the pot
func (h *Hand) AddToPot(amount int) {
	h.pot += amount
}

// AddPlayerContribution records chips a player put in, both against the
// hand-lifetime total and the current betting state
func (h *Hand) AddPlayerContribution(playerID string, amount int) {
	for _, c := range h.contributions {
		if c.playerID == playerID {
			c.total += amount
			c.byState[h.state] += amount
			return
		}
	}

	h.contributions = append(h.contributions, &contribution{
		playerID: playerID,
		total:    amount,
		byState:  map[HandState]int{h.state: amount},
	})
}

// PlayerContribution returns a player's hand-lifetime contribution
func (h *Hand) PlayerContribution(playerID string) int {
	for _, c := range h.contributions {
		if c.playerID == playerID {
			return c.total
		}
	}

	return 0
}

// PlayerStateContribution returns what a player put in during the current
// betting state
func (h *Hand) PlayerStateContribution(playerID string) int {
	for _, c := range h.contributions {
		if c.playerID == playerID {
			return c.byState[h.state]
		}
	}

	return 0
}

// MinCallAmount returns the amount a player must put in to match the highest
// contributor, capped at the player's remaining coins for the all-in case
func (h *Hand) MinCallAmount(playerID string, coins int) int {
	if coins <= 0 {
		return 0
	}

	highest := 0
	for _, c := range h.contributions {
		if c.total > highest {
			highest = c.total
		}
	}

	callAmount := highest - h.PlayerContribution(playerID)
	if callAmount < 0 {
		callAmount = 0
	}

	if callAmount > coins {
		callAmount = coins
	}

	return callAmount
}

// AddToBetAgreement marks a player as having matched the current bet or checked
func (h *Hand) AddToBetAgreement(playerID string) {
	if contains(h.betAgreedPlayers, playerID) {
		return
	}

	h.betAgreedPlayers = append(h.betAgreedPlayers, playerID)
}

// AddToFolded marks a player as folded for the rest of the hand
func (h *Hand) AddToFolded(playerID string) {
	if contains(h.foldedPlayers, playerID) {
		return
	}

	h.foldedPlayers = append(h.foldedPlayers, playerID)
}

// AddToExited marks a player as having left the game mid-hand. Exited
// players must also be folded; they are excluded from the eligible
// denominator in the agreement predicates.
func (h *Hand) AddToExited(playerID string) {
	if contains(h.exitedPlayers, playerID) {
		return
	}

	h.exitedPlayers = append(h.exitedPlayers, playerID)
}

// ClearBetAgreedPlayers resets the agreement set. Called when the state
// advances and when a raise reopens the action.
func (h *Hand) ClearBetAgreedPlayers() {
	h.betAgreedPlayers = h.betAgreedPlayers[:0]
}

// BetAgreedPlayers returns the IDs of players who agreed on the current bet
func (h *Hand) BetAgreedPlayers() []string {
	agreed := make([]string, len(h.betAgreedPlayers))
	copy(agreed, h.betAgreedPlayers)
	return agreed
}

// FoldedPlayers returns the IDs of folded players
func (h *Hand) FoldedPlayers() []string {
	folded := make([]string, len(h.foldedPlayers))
	copy(folded, h.foldedPlayers)
	return folded
}

// HasPlayerFolded returns true if the player folded this hand
func (h *Hand) HasPlayerFolded(playerID string) bool {
	return contains(h.foldedPlayers, playerID)
}

// DoesPlayerNeedToTakeAction returns true unless the player already folded
// or agreed on the current bet
func (h *Hand) DoesPlayerNeedToTakeAction(playerID string) bool {
	return !contains(h.betAgreedPlayers, playerID) && !contains(h.foldedPlayers, playerID)
}

// HasEveryoneElseFolded returns true when exactly one eligible player
// remains un-folded
func (h *Hand) HasEveryoneElseFolded(totalEligiblePlayers int) bool {
	folded := len(h.foldedPlayers) - len(h.exitedPlayers)
	return totalEligiblePlayers-folded == 1
}

// HavePlayersAgreedOnBet returns true when every eligible player has either
// folded or agreed on the current bet
func (h *Hand) HavePlayersAgreedOnBet(totalEligiblePlayers int) bool {
	settled := len(h.foldedPlayers) + len(h.betAgreedPlayers) - len(h.exitedPlayers)
	return settled == totalEligiblePlayers
}

// SetAutomaticWinner marks the sole remaining contender
func (h *Hand) SetAutomaticWinner(playerID string) {
	h.automaticWinnerID = playerID
}

// AutomaticWinner returns the sole remaining contender's ID, or ""
func (h *Hand) AutomaticWinner() string {
	return h.automaticWinnerID
}

// Reimbursement is an over-contribution returned to a player's stack
type Reimbursement struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// Settlement is the outcome of settling the pot for a single winner
type Settlement struct {
	WinnerPayout   int
	Reimbursements []Reimbursement
}

// Settle computes the winner's payout: their own contribution plus, from
// every other contributor, at most the winner's own contribution. A
// contributor who put in more than the winner is reimbursed the excess.
// This is a single-tier refund, not a general side-pot ladder.
func (h *Hand) Settle(winnerID string) *Settlement {
	winnerContribution := h.PlayerContribution(winnerID)
	payout := winnerContribution

	reimbursements := make([]Reimbursement, 0)
	for _, c := range h.contributions {
		if c.playerID == winnerID {
			continue
		}

		if c.total > winnerContribution {
			payout += winnerContribution
			reimbursements = append(reimbursements, Reimbursement{
				PlayerID: c.playerID,
				Amount:   c.total - winnerContribution,
			})
		} else {
			payout += c.total
		}
	}

	return &Settlement{
		WinnerPayout:   payout,
		Reimbursements: reimbursements,
	}
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}

	return false
}
