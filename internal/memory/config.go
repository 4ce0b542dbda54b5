package memory

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPairCount = errors.New("pair count must be positive")
	ErrNotEnoughSymbols = errors.New("not enough symbols for pair count")
)

// DefaultSymbols is the animal palette cards are drawn from.
var DefaultSymbols = []string{"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🦁", "🐮", "🐷"}

type Config struct {
	PairCount            int
	MatchResolveDelay    time.Duration
	MismatchResolveDelay time.Duration
	TickInterval         time.Duration
	Symbols              []string
}

func DefaultConfig() Config {
	return Config{
		PairCount:            8,
		MatchResolveDelay:    500 * time.Millisecond,
		MismatchResolveDelay: time.Second,
		TickInterval:         time.Second,
		Symbols:              DefaultSymbols,
	}
}

func (that Config) validate() error {
	if that.PairCount <= 0 {
		return ErrInvalidPairCount
	}

	if len(that.Symbols) < that.PairCount {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughSymbols, len(that.Symbols), that.PairCount)
	}

	return nil
}
