package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrypto_Intn(t *testing.T) {
	a := assert.New(t)

	gen := Crypto{}

	counts := make([]int, 6)
	for i := 0; i < 1000; i++ {
		counts[gen.Intn(5)]++
	}

	// a thousand draws over five values; a missing value is vanishingly
	// unlikely
	for v := 0; v < 5; v++ {
		a.NotZero(counts[v], "value %d was never drawn", v)
	}
	a.Zero(counts[5])
}
