// Package rng supplies the random source behind the deck shuffle.
package rng

// Generator yields uniform random integers. The deck takes this interface so
// tests can swap in a seeded source.
type Generator interface {
	// Intn returns a uniform random int in [0, n)
	Intn(n int) int
}
