// Package rng supplies uniform random selection for the rule sets.
//
// Every provider is seedable so tests can replay a shuffle or a computer choice.
package rng

import (
	"math/rand/v2"
	"sync"
)

// Provider is the source of randomness a rule set depends on.
type Provider interface {
	// Intn returns a uniform value in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Shuffle permutes n elements uniformly (Fisher-Yates) using swap.
	Shuffle(n int, swap func(i, j int))
	// Sample returns k distinct indices drawn uniformly from [0, n).
	Sample(n, k int) []int
}

type provider struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// New returns a provider seeded with seed. A zero seed draws a random one.
func New(seed uint64) Provider {
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &provider{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // game randomness
	}
}

func (that *provider) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rand.IntN(n)
}

func (that *provider) Shuffle(n int, swap func(i, j int)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rand.Shuffle(n, swap)
}

// Sample runs a partial Fisher-Yates over [0, n) and keeps the first k slots.
func (that *provider) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return []int{}
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	for i := 0; i < k; i++ {
		j := i + that.rand.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k:k]
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](provider Provider, items []T) T {
	return items[provider.Intn(len(items))]
}

// ShuffleSlice permutes items in place.
func ShuffleSlice[T any](provider Provider, items []T) {
	provider.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// SampleSlice returns k distinct elements of items without replacement.
func SampleSlice[T any](provider Provider, items []T, k int) []T {
	indices := provider.Sample(len(items), k)

	sample := make([]T, 0, len(indices))
	for _, i := range indices {
		sample = append(sample, items[i])
	}

	return sample
}
