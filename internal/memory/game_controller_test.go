package memory

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/rng"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
	quiet   = 50 * time.Millisecond
)

// orderedProvider deals the first symbols and never shuffles, so card i pairs with card i+PairCount.
type orderedProvider struct{}

func (orderedProvider) Intn(int) int { return 0 }

func (orderedProvider) Shuffle(int, func(i, j int)) {}

func (orderedProvider) Sample(n, k int) []int {
	indices := make([]int, 0, k)
	for i := 0; i < k && i < n; i++ {
		indices = append(indices, i)
	}
	return indices
}

func newRules(t *testing.T, provider rng.Provider) *RuleSet {
	t.Helper()

	rules, err := New(DefaultConfig(), provider)
	require.NoError(t, err)

	return rules
}

func newSession(t *testing.T) (*session.Session[State, Flip], func(time.Duration)) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	s := session.New[State, Flip](newRules(t, orderedProvider{}), session.WithClock(clock))
	t.Cleanup(s.Dispose)
	s.Start()

	return s, clock.Advance
}

func TestNew(t *testing.T) {
	t.Run("Rejects a palette smaller than the pair count", func(t *testing.T) {
		conf := DefaultConfig()
		conf.Symbols = conf.Symbols[:3]

		_, err := New(conf, orderedProvider{})

		require.ErrorIs(t, err, ErrNotEnoughSymbols)
	})

	t.Run("Rejects a non-positive pair count", func(t *testing.T) {
		conf := DefaultConfig()
		conf.PairCount = 0

		_, err := New(conf, orderedProvider{})

		require.ErrorIs(t, err, ErrInvalidPairCount)
	})
}

func TestRuleSet_CreateInitialState(t *testing.T) {
	t.Run("Every chosen symbol appears exactly twice", func(t *testing.T) {
		for seed := uint64(1); seed <= 20; seed++ {
			// Given: a randomly seeded rule set
			rules := newRules(t, rng.New(seed))

			// When: a board is dealt
			state := rules.CreateInitialState(nil)

			// Then: 16 face-down cards form 8 distinct pairs
			require.Len(t, state.Cards, 16)
			counts := map[string]int{}
			for _, card := range state.Cards {
				assert.False(t, card.FaceUp)
				assert.False(t, card.Matched)
				assert.Contains(t, DefaultSymbols, card.Symbol)
				counts[card.Symbol]++
			}
			assert.Len(t, counts, 8)
			for symbol, count := range counts {
				assert.Equal(t, 2, count, "symbol %s", symbol)
			}
			assert.Empty(t, state.FaceUp)
			assert.Zero(t, state.Moves)
			assert.Equal(t, 8, state.PairCount)
			assert.Equal(t, startMessage, state.Message)
		}
	})
}

func TestRuleSet_ApplyInput(t *testing.T) {
	t.Run("Matching pair clears face-up cards at once and matches after the delay", func(t *testing.T) {
		// Given: a known layout
		rules := newRules(t, orderedProvider{})
		state := rules.CreateInitialState(nil)

		// When: both cards of a pair are revealed
		rules.ApplyInput(&state, Flip{Card: 0})
		transition := rules.ApplyInput(&state, Flip{Card: 8})

		// Then: the move counts and a match resolution is scheduled
		assert.Equal(t, 1, state.Moves)
		assert.Empty(t, state.FaceUp)
		require.Len(t, transition.Deferred, 1)
		assert.Equal(t, 500*time.Millisecond, transition.Deferred[0].Delay)
		assert.False(t, state.Cards[0].Matched)

		// When: the resolution runs
		result := transition.Deferred[0].Apply(&state)

		// Then: both cards are matched
		assert.False(t, result.IsTerminal())
		assert.True(t, state.Cards[0].Matched)
		assert.True(t, state.Cards[8].Matched)
		assert.Equal(t, 1, state.MatchedPairs)
	})

	t.Run("Mismatched pair blocks reveals until it turns back", func(t *testing.T) {
		// Given: a mismatched pair face-up
		rules := newRules(t, orderedProvider{})
		state := rules.CreateInitialState(nil)
		rules.ApplyInput(&state, Flip{Card: 0})
		transition := rules.ApplyInput(&state, Flip{Card: 1})
		require.Len(t, transition.Deferred, 1)
		assert.Equal(t, time.Second, transition.Deferred[0].Delay)

		// When: a third card is revealed before the revert
		blocked := rules.ApplyInput(&state, Flip{Card: 2})

		// Then: it is ignored
		assert.True(t, blocked.IsIgnored())
		assert.False(t, state.Cards[2].FaceUp)
		assert.Equal(t, []int{0, 1}, state.FaceUp)

		// When: the revert runs
		transition.Deferred[0].Apply(&state)

		// Then: both cards are face-down again
		assert.False(t, state.Cards[0].FaceUp)
		assert.False(t, state.Cards[1].FaceUp)
		assert.Empty(t, state.FaceUp)
		assert.Equal(t, 1, state.Moves)
	})

	t.Run("Invalid, face-up and matched cards are ignored", func(t *testing.T) {
		// Given: one revealed card and one matched pair
		rules := newRules(t, orderedProvider{})
		state := rules.CreateInitialState(nil)
		rules.ApplyInput(&state, Flip{Card: 1})
		transition := rules.ApplyInput(&state, Flip{Card: 9})
		transition.Deferred[0].Apply(&state)
		rules.ApplyInput(&state, Flip{Card: 3})
		before := state.Clone()

		for _, card := range []int{-1, 16, 3, 1, 9} {
			// When: the card is flipped
			result := rules.ApplyInput(&state, Flip{Card: card})

			// Then: nothing changes
			assert.True(t, result.IsIgnored(), "card %d", card)
			assert.Equal(t, before, state)
		}
	})

	t.Run("Last pair ends the game with moves and time", func(t *testing.T) {
		// Given: seven pairs already matched
		rules := newRules(t, orderedProvider{})
		state := rules.CreateInitialState(nil)
		for pair := 0; pair < 7; pair++ {
			rules.ApplyInput(&state, Flip{Card: pair})
			rules.ApplyInput(&state, Flip{Card: pair + 8}).Deferred[0].Apply(&state)
		}
		state.ElapsedSeconds = 42

		// When: the final pair resolves
		rules.ApplyInput(&state, Flip{Card: 7})
		result := rules.ApplyInput(&state, Flip{Card: 15}).Deferred[0].Apply(&state)

		// Then: the round is complete
		require.True(t, result.IsTerminal())
		assert.Equal(t, entity.OutcomeComplete, result.Outcome.Kind)
		assert.Equal(t, 8, result.Outcome.Moves)
		assert.Equal(t, 42, result.Outcome.ElapsedSeconds)
		assert.Equal(t, "Congratulations! You won in 8 moves and 42 seconds!", state.Message)
	})
}

func TestState_Masked(t *testing.T) {
	// Given: one face-up card and one matched pair
	rules := newRules(t, orderedProvider{})
	state := rules.CreateInitialState(nil)
	rules.ApplyInput(&state, Flip{Card: 0})
	rules.ApplyInput(&state, Flip{Card: 8}).Deferred[0].Apply(&state)
	rules.ApplyInput(&state, Flip{Card: 1})

	// When: the state is masked
	masked, ok := state.Masked().(State)
	require.True(t, ok)

	// Then: only visible symbols survive and the live state keeps them
	assert.NotEmpty(t, masked.Cards[0].Symbol)
	assert.NotEmpty(t, masked.Cards[8].Symbol)
	assert.NotEmpty(t, masked.Cards[1].Symbol)
	assert.Empty(t, masked.Cards[2].Symbol)
	assert.NotEmpty(t, state.Cards[2].Symbol)
}

func TestRuleSet_DecodeInput(t *testing.T) {
	rules := newRules(t, orderedProvider{})

	flip, err := rules.DecodeInput([]byte(`{"card":5}`))
	require.NoError(t, err)
	assert.Equal(t, Flip{Card: 5}, flip)

	_, err = rules.DecodeInput([]byte(`{"cell":5}`))
	require.ErrorIs(t, err, ErrCardIsRequired)
}

func TestSession_Memory(t *testing.T) {
	t.Run("Match resolves after the match delay", func(t *testing.T) {
		// Given: a running session
		s, advance := newSession(t)

		// When: a pair is revealed and the delay elapses
		s.HandleInput(Flip{Card: 2})
		s.HandleInput(Flip{Card: 10})
		advance(500 * time.Millisecond)

		// Then: both cards become matched
		assert.Eventually(t, func() bool {
			state := s.State()
			return state.Cards[2].Matched && state.Cards[10].Matched && state.MatchedPairs == 1
		}, waitFor, tick)
	})

	t.Run("Third card is accepted while a match is pending", func(t *testing.T) {
		// Given: a matched pair awaiting its delay
		s, _ := newSession(t)
		s.HandleInput(Flip{Card: 2})
		s.HandleInput(Flip{Card: 10})

		// When: another card is revealed
		s.HandleInput(Flip{Card: 3})

		// Then: it is face-up immediately
		state := s.State()
		assert.True(t, state.Cards[3].FaceUp)
		assert.Equal(t, []int{3}, state.FaceUp)
	})

	t.Run("Mismatch turns back after the mismatch delay", func(t *testing.T) {
		// Given: a mismatched pair
		s, advance := newSession(t)
		s.HandleInput(Flip{Card: 0})
		s.HandleInput(Flip{Card: 1})

		// When: only the match delay elapses
		advance(500 * time.Millisecond)

		// Then: the cards are still up
		assert.Never(t, func() bool { return !s.State().Cards[0].FaceUp }, quiet, tick)

		// When: the rest of the mismatch delay elapses
		advance(500 * time.Millisecond)

		// Then: both cards are face-down
		assert.Eventually(t, func() bool {
			state := s.State()
			return !state.Cards[0].FaceUp && !state.Cards[1].FaceUp && len(state.FaceUp) == 0
		}, waitFor, tick)
	})

	t.Run("Dispose before the revert leaves no mutation", func(t *testing.T) {
		// Given: a mismatched pair
		var versions []uint64
		s, advance := newSession(t)
		s.Subscribe(func(snapshot entity.Snapshot) {
			versions = append(versions, snapshot.Version)
		})
		s.HandleInput(Flip{Card: 0})
		s.HandleInput(Flip{Card: 1})

		// When: the session is disposed and the delay elapses
		s.Dispose()
		advance(2 * time.Second)

		// Then: nothing fires afterwards
		assert.Never(t, func() bool { return len(versions) > 2 }, quiet, tick)
		assert.True(t, s.IsDisposed())
		assert.Equal(t, entity.StatusIdle, s.Status())
	})

	t.Run("Ticker counts seconds while active", func(t *testing.T) {
		// Given: a running session
		s, advance := newSession(t)

		// When: two seconds pass
		advance(time.Second)
		assert.Eventually(t, func() bool { return s.State().ElapsedSeconds == 1 }, waitFor, tick)
		advance(time.Second)

		// Then: the timer shows two
		assert.Eventually(t, func() bool { return s.State().ElapsedSeconds == 2 }, waitFor, tick)
	})

	t.Run("Matching every pair ends the session", func(t *testing.T) {
		// Given: a running session
		s, advance := newSession(t)

		// When: every pair is revealed and resolved
		for pair := 0; pair < 8; pair++ {
			s.HandleInput(Flip{Card: pair})
			s.HandleInput(Flip{Card: pair + 8})
		}
		advance(500 * time.Millisecond)

		// Then: the session is terminal with eight moves
		assert.Eventually(t, func() bool { return s.Status() == entity.StatusTerminal }, waitFor, tick)
		outcome := s.Outcome()
		require.NotNil(t, outcome)
		assert.Equal(t, 8, outcome.Moves)
		assert.Equal(t, 8, s.State().MatchedPairs)
	})
}
