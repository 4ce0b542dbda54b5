package session

import (
	"time"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

// State is implemented by every rule-set state so snapshots never alias live data.
type State[S any] interface {
	Clone() S
}

// RuleSet is the pluggable logic of one game.
type RuleSet[S any, E any] interface {
	Game() entity.GameID
	// CreateInitialState builds a fresh state. prev is nil on the first start and holds the
	// outgoing state on restart, so accumulators such as scores can be carried over.
	CreateInitialState(prev *S) S
	// ApplyInput validates event and mutates state in place.
	ApplyInput(state *S, event E) Transition[S]
	DecodeInput(payload []byte) (E, error)
}

// Ticker is implemented by rule sets that need a periodic tick while the session is active.
type Ticker[S any] interface {
	TickInterval() time.Duration
	// Tick reports whether the state changed.
	Tick(state *S) bool
}

// Deferred is a one-shot state transition applied after Delay.
type Deferred[S any] struct {
	Delay time.Duration
	Apply func(state *S) Transition[S]
}

// Transition is the result of applying an input or a deferred task.
type Transition[S any] struct {
	Outcome  *entity.Outcome
	Deferred []Deferred[S]

	ignored bool
}

// Continue keeps the session active.
func Continue[S any]() Transition[S] {
	return Transition[S]{}
}

// Ignore rejects an input without touching the state.
func Ignore[S any]() Transition[S] {
	return Transition[S]{ignored: true}
}

// Terminal ends the round with outcome.
func Terminal[S any](outcome entity.Outcome) Transition[S] {
	return Transition[S]{Outcome: &outcome}
}

// After schedules apply to run once delay has elapsed.
func (that Transition[S]) After(delay time.Duration, apply func(state *S) Transition[S]) Transition[S] {
	that.Deferred = append(that.Deferred, Deferred[S]{Delay: delay, Apply: apply})
	return that
}

func (that Transition[S]) IsTerminal() bool {
	return that.Outcome != nil
}

func (that Transition[S]) IsIgnored() bool {
	return that.ignored
}
