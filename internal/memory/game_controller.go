package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/rng"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

const startMessage = "Match all pairs to win!"

var ErrCardIsRequired = errors.New("card is required")

type RuleSet struct {
	conf Config
	rng  rng.Provider
}

func New(conf Config, provider rng.Provider) (*RuleSet, error) {
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("failed to create memory rules: %w", err)
	}

	return &RuleSet{
		conf: conf,
		rng:  provider,
	}, nil
}

func (that *RuleSet) Game() entity.GameID {
	return entity.GameMemory
}

// CreateInitialState deals a fresh board. Nothing is carried over from prev.
func (that *RuleSet) CreateInitialState(_ *State) State {
	symbols := rng.SampleSlice(that.rng, that.conf.Symbols, that.conf.PairCount)

	cards := make([]Card, 0, len(symbols)*2)
	for range 2 {
		for _, symbol := range symbols {
			cards = append(cards, Card{Symbol: symbol})
		}
	}
	rng.ShuffleSlice(that.rng, cards)

	return State{
		Cards:     cards,
		FaceUp:    []int{},
		PairCount: len(symbols),
		Message:   startMessage,
	}
}

func (that *RuleSet) ApplyInput(state *State, flip Flip) session.Transition[State] {
	if !canFlip(state, flip.Card) {
		return session.Ignore[State]()
	}

	state.Cards[flip.Card].FaceUp = true
	state.FaceUp = append(state.FaceUp, flip.Card)

	if len(state.FaceUp) < 2 {
		return session.Continue[State]()
	}

	state.Moves++
	first, second := state.FaceUp[0], state.FaceUp[1]

	if state.Cards[first].Symbol == state.Cards[second].Symbol {
		// the pair is settled now, only the matched flag waits for the delay
		state.FaceUp = state.FaceUp[:0]

		return session.Continue[State]().After(that.conf.MatchResolveDelay, func(state *State) session.Transition[State] {
			return that.resolveMatch(state, first, second)
		})
	}

	return session.Continue[State]().After(that.conf.MismatchResolveDelay, func(state *State) session.Transition[State] {
		return resolveMismatch(state, first, second)
	})
}

func (that *RuleSet) DecodeInput(payload []byte) (Flip, error) {
	var raw struct {
		Card *int `json:"card"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return Flip{}, fmt.Errorf("failed to unmarshal flip: %w", err)
	}

	if raw.Card == nil {
		return Flip{}, ErrCardIsRequired
	}

	return Flip{Card: *raw.Card}, nil
}

func (that *RuleSet) TickInterval() time.Duration {
	return that.conf.TickInterval
}

func (that *RuleSet) Tick(state *State) bool {
	state.ElapsedSeconds++
	return true
}

func (that *RuleSet) resolveMatch(state *State, first, second int) session.Transition[State] {
	state.Cards[first].Matched = true
	state.Cards[second].Matched = true
	state.MatchedPairs++

	if state.MatchedPairs < state.PairCount {
		return session.Continue[State]()
	}

	state.Message = fmt.Sprintf("Congratulations! You won in %d moves and %d seconds!", state.Moves, state.ElapsedSeconds)

	return session.Terminal[State](entity.Outcome{
		Kind:           entity.OutcomeComplete,
		Moves:          state.Moves,
		ElapsedSeconds: state.ElapsedSeconds,
		Message:        state.Message,
	})
}

func resolveMismatch(state *State, first, second int) session.Transition[State] {
	state.Cards[first].FaceUp = false
	state.Cards[second].FaceUp = false
	state.FaceUp = state.FaceUp[:0]

	return session.Continue[State]()
}

// canFlip - a card may be revealed when it is face-down, unmatched and no mismatched pair is pending.
func canFlip(state *State, index int) bool {
	if index < 0 || index >= len(state.Cards) {
		return false
	}

	if len(state.FaceUp) >= 2 {
		return false
	}

	card := state.Cards[index]

	return !card.FaceUp && !card.Matched
}
