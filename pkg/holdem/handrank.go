package holdem

import (
	"sort"

	"github.com/vigarblock/texas-holdem-poker-server/pkg/deck"
)

// Rank is a poker hand category. Lower values are stronger hands.
type Rank int

// hand categories from strongest to weakest
const (
	RoyalFlush Rank = iota + 1
	StraightFlush
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	OnePair
	HighCard
)

func (r Rank) String() string {
	switch r {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case OnePair:
		return "One Pair"
	case HighCard:
		return "High Card"
	}

	return ""
}

// Result is the outcome of checking a set of cards against a single hand category.
// Cards holds the minimal subset that justifies the category when Outcome is true.
type Result struct {
	Outcome bool
	Rank    Rank
	Cards   []*deck.Card
}

var noMatch = Result{}

// HighestRank evaluates the categories from Royal Flush down to High Card and
// returns the first match. The categories are mutually exclusive by
// construction, so the first match is the best hand the cards can make.
func HighestRank(cards []*deck.Card) Result {
	checks := []func([]*deck.Card) Result{
		IsRoyalFlush,
		IsStraightFlush,
		IsFourOfAKind,
		IsFullHouse,
		IsFlush,
		IsStraight,
		IsThreeOfAKind,
		IsTwoPair,
		IsOnePair,
		GetHighCard,
	}

	for _, check := range checks {
		if result := check(cards); result.Outcome {
			return result
		}
	}

	// unreachable, GetHighCard always matches
	panic("unable to determine hand rank")
}

// IsRoyalFlush checks for 10,J,Q,K,A of a single suit
func IsRoyalFlush(cards []*deck.Card) Result {
	for suit, suited := range groupBySuit(cards) {
		if len(suited) < 5 {
			continue
		}

		royal := make([]*deck.Card, 0, 5)
		for _, rank := range []int{deck.Ace, deck.King, deck.Queen, deck.Jack, 10} {
			if card := findCard(cards, rank, suit); card != nil {
				royal = append(royal, card)
			}
		}

		if len(royal) == 5 {
			return Result{Outcome: true, Rank: RoyalFlush, Cards: royal}
		}
	}

	return noMatch
}

// IsStraightFlush checks for five consecutive ranks of a single suit
func IsStraightFlush(cards []*deck.Card) Result {
	for _, suited := range groupBySuit(cards) {
		if len(suited) < 5 {
			continue
		}

		if straight := IsStraight(suited); straight.Outcome {
			return Result{Outcome: true, Rank: StraightFlush, Cards: straight.Cards}
		}
	}

	return noMatch
}

// IsFourOfAKind checks for four cards of the same rank, keeping the
// highest-ranked group when more than one qualifies
func IsFourOfAKind(cards []*deck.Card) Result {
	if rank := bestGroup(cards, 4); rank > 0 {
		return Result{Outcome: true, Rank: FourOfAKind, Cards: takeOfRank(cards, rank, 4)}
	}

	return noMatch
}

// IsFullHouse checks for three of a kind plus a pair of a different rank.
// The highest qualifying three of a kind is selected first, then the highest
// remaining pair (a second set of trips can supply the pair).
func IsFullHouse(cards []*deck.Card) Result {
	trips := bestGroup(cards, 3)
	if trips == 0 {
		return noMatch
	}

	pair := 0
	for rank, group := range groupByRank(cards) {
		if rank != trips && len(group) >= 2 && rank > pair {
			pair = rank
		}
	}

	if pair == 0 {
		return noMatch
	}

	justifying := append(takeOfRank(cards, trips, 3), takeOfRank(cards, pair, 2)...)
	return Result{Outcome: true, Rank: FullHouse, Cards: justifying}
}

// IsFlush checks for five cards of a single suit, justified by the highest five
func IsFlush(cards []*deck.Card) Result {
	for _, suited := range groupBySuit(cards) {
		if len(suited) < 5 {
			continue
		}

		sort.Sort(sort.Reverse(byRank(suited)))
		return Result{Outcome: true, Rank: Flush, Cards: suited[0:5]}
	}

	return noMatch
}

// IsStraight checks for five consecutive unique ranks. Ranks are ordered
// ace-low (A,2,...,K); there is no ace-high or wraparound straight.
func IsStraight(cards []*deck.Card) Result {
	unique := make([]*deck.Card, 0, len(cards))
	seen := make(map[int]bool)

	sorted := make([]*deck.Card, len(cards))
	copy(sorted, cards)
	sort.Sort(byRank(sorted))

	for _, card := range sorted {
		if !seen[card.Rank] {
			seen[card.Rank] = true
			unique = append(unique, card)
		}
	}

	run := make([]*deck.Card, 0, 5)
	for i, card := range unique {
		if i > 0 && card.Rank != unique[i-1].Rank+1 {
			run = run[:0]
		}

		run = append(run, card)
		if len(run) == 5 {
			return Result{Outcome: true, Rank: Straight, Cards: run}
		}
	}

	return noMatch
}

// IsThreeOfAKind checks for three cards of the same rank
func IsThreeOfAKind(cards []*deck.Card) Result {
	if rank := bestGroup(cards, 3); rank > 0 {
		return Result{Outcome: true, Rank: ThreeOfAKind, Cards: takeOfRank(cards, rank, 3)}
	}

	return noMatch
}

// IsTwoPair checks for two pairs of different ranks, keeping the top two
// when more than two qualify
func IsTwoPair(cards []*deck.Card) Result {
	pairs := make([]int, 0, 3)
	for rank, group := range groupByRank(cards) {
		if len(group) >= 2 {
			pairs = append(pairs, rank)
		}
	}

	if len(pairs) < 2 {
		return noMatch
	}

	sort.Sort(sort.Reverse(sort.IntSlice(pairs)))
	justifying := append(takeOfRank(cards, pairs[0], 2), takeOfRank(cards, pairs[1], 2)...)
	return Result{Outcome: true, Rank: TwoPair, Cards: justifying}
}

// IsOnePair checks for a single pair
func IsOnePair(cards []*deck.Card) Result {
	if rank := bestGroup(cards, 2); rank > 0 {
		return Result{Outcome: true, Rank: OnePair, Cards: takeOfRank(cards, rank, 2)}
	}

	return noMatch
}

// GetHighCard always matches and is justified by the single highest card
func GetHighCard(cards []*deck.Card) Result {
	high := cards[0]
	for _, card := range cards[1:] {
		if card.Rank > high.Rank {
			high = card
		}
	}

	return Result{Outcome: true, Rank: HighCard, Cards: []*deck.Card{high}}
}

// bestGroup returns the highest rank with at least size cards, or 0
func bestGroup(cards []*deck.Card, size int) int {
	best := 0
	for rank, group := range groupByRank(cards) {
		if len(group) >= size && rank > best {
			best = rank
		}
	}

	return best
}

func takeOfRank(cards []*deck.Card, rank, n int) []*deck.Card {
	taken := make([]*deck.Card, 0, n)
	for _, card := range cards {
		if card.Rank == rank {
			taken = append(taken, card)
			if len(taken) == n {
				break
			}
		}
	}

	return taken
}

func findCard(cards []*deck.Card, rank int, suit deck.Suit) *deck.Card {
	for _, card := range cards {
		if card.Rank == rank && card.Suit == suit {
			return card
		}
	}

	return nil
}

func groupBySuit(cards []*deck.Card) map[deck.Suit][]*deck.Card {
	suits := make(map[deck.Suit][]*deck.Card)
	for _, card := range cards {
		suits[card.Suit] = append(suits[card.Suit], card)
	}

	return suits
}

func groupByRank(cards []*deck.Card) map[int][]*deck.Card {
	ranks := make(map[int][]*deck.Card)
	for _, card := range cards {
		ranks[card.Rank] = append(ranks[card.Rank], card)
	}

	return ranks
}

type byRank []*deck.Card

func (b byRank) Len() int           { return len(b) }
func (b byRank) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
func (b byRank) Less(i, j int) bool { return b[i].Rank < b[j].Rank }
