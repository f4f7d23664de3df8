package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCard_String(t *testing.T) {
	assert.Equal(t, "A♠", CardFromString("1s").String())
	assert.Equal(t, "10♡", CardFromString("10h").String())
	assert.Equal(t, "J♣", CardFromString("11c").String())
	assert.Equal(t, "Q♢", CardFromString("12d").String())
	assert.Equal(t, "K♡", CardFromString("13h").String())
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)

	card := CardFromString("1h")
	a.Equal(Ace, card.Rank)
	a.Equal(Hearts, card.Suit)

	card = CardFromString("13s")
	a.Equal(King, card.Rank)
	a.Equal(Spades, card.Suit)

	a.Nil(CardFromString(""))

	a.PanicsWithValue("could not parse card: 14s", func() {
		CardFromString("14s")
	})
}

func TestCardsFromString(t *testing.T) {
	cards := CardsFromString("2c,13d,1s")
	assert.Equal(t, 3, len(cards))
	assert.Equal(t, "2c,13d,1s", CardsToString(cards))

	assert.Equal(t, []*Card{}, CardsFromString(""))
}

func TestCard_Equal(t *testing.T) {
	a := assert.New(t)
	a.True(CardFromString("5s").Equal(CardFromString("5s")))
	a.False(CardFromString("5s").Equal(CardFromString("5c")))
	a.False(CardFromString("5s").Equal(CardFromString("6s")))
}

func TestCard_Clone(t *testing.T) {
	card := CardFromString("9d")
	clone := card.Clone()
	assert.True(t, card.Equal(clone))

	clone.Rank = 10
	assert.Equal(t, 9, card.Rank)
}
