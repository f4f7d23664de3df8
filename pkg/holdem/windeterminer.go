package holdem

import (
	"errors"

	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

// ShowdownPlayer is the projection of a player the win determiner needs
type ShowdownPlayer struct {
	ID        string
	Name      string
	HoleCards []*deck.Card
}

// Winners is the outcome of a showdown. With more than one winner the pot
// is split.
type Winners struct {
	Winners            []ShowdownPlayer
	WinningRankMessage string
}

type rankedHand struct {
	player ShowdownPlayer
	result Result
}

// GetWinners combines each player's hole cards with the community cards,
// finds the best hand category per player, and resolves ties among equal
// categories. Tie-breaking is deterministic: identical inputs always produce
// the same winner set.
func GetWinners(players []ShowdownPlayer, communityCards []*deck.Card) (*Winners, error) {
	if len(players) == 0 {
		return nil, errors.New("no players at showdown")
	}

	ranked := make([]rankedHand, len(players))
	for i, player := range players {
		combined := make([]*deck.Card, 0, len(player.HoleCards)+len(communityCards))
		combined = append(combined, player.HoleCards...)
		combined = append(combined, communityCards...)

		ranked[i] = rankedHand{
			player: player,
			result: HighestRank(combined),
		}
	}

	best := ranked[0].result.Rank
	for _, hand := range ranked[1:] {
		if hand.result.Rank < best {
			best = hand.result.Rank
		}
	}

	topRankedHands := make([]rankedHand, 0, len(ranked))
	for _, hand := range ranked {
		if hand.result.Rank == best {
			topRankedHands = append(topRankedHands, hand)
		}
	}

	if len(topRankedHands) > 1 {
		topRankedHands = breakTieByKicker(topRankedHands)
	}

	if len(topRankedHands) > 1 {
		topRankedHands = breakTieByHoleCards(topRankedHands)
	}

	winners := make([]ShowdownPlayer, len(topRankedHands))
	for i, hand := range topRankedHands {
		winners[i] = hand.player
	}

	return &Winners{
		Winners:            winners,
		WinningRankMessage: best.String(),
	}, nil
}

// breakTieByKicker keeps the hands whose ranking cards contain the highest
// single card
func breakTieByKicker(hands []rankedHand) []rankedHand {
	high := 0
	for _, hand := range hands {
		if kicker := highestRankValue(hand.result.Cards); kicker > high {
			high = kicker
		}
	}

	remaining := make([]rankedHand, 0, len(hands))
	for _, hand := range hands {
		if highestRankValue(hand.result.Cards) == high {
			remaining = append(remaining, hand)
		}
	}

	return remaining
}

// breakTieByHoleCards keeps the hand holding the highest hole-card rank that
// no other tied player holds. When no distinguishing card exists, all hands
// are kept as co-winners.
func breakTieByHoleCards(hands []rankedHand) []rankedHand {
	holders := make(map[int][]int)
	for i, hand := range hands {
		seen := make(map[int]bool)
		for _, card := range hand.player.HoleCards {
			if !seen[card.Rank] {
				seen[card.Rank] = true
				holders[card.Rank] = append(holders[card.Rank], i)
			}
		}
	}

	bestRank := 0
	bestHolder := -1
	for rank, holding := range holders {
		if len(holding) == 1 && rank > bestRank {
			bestRank = rank
			bestHolder = holding[0]
		}
	}

	if bestHolder == -1 {
		return hands
	}

	return []rankedHand{hands[bestHolder]}
}

func highestRankValue(cards []*deck.Card) int {
	high := 0
	for _, card := range cards {
		if card.Rank > high {
			high = card.Rank
		}
	}

	return high
}
