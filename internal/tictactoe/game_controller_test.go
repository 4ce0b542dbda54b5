package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

func play(t *testing.T, rules *RuleSet, state *State, cells ...int) session.Transition[State] {
	t.Helper()

	var transition session.Transition[State]
	for _, cell := range cells {
		transition = rules.ApplyInput(state, Turn{Cell: cell})
		require.False(t, transition.IsIgnored(), "cell %d was rejected", cell)
	}

	return transition
}

func TestRuleSet_CreateInitialState(t *testing.T) {
	t.Run("First round starts with X on an empty board", func(t *testing.T) {
		// Given: a fresh rule set
		rules := New()

		// When: the initial state is created
		state := rules.CreateInitialState(nil)

		// Then: the board is empty and X opens
		assert.Equal(t, [9]Mark{}, state.Board)
		assert.Equal(t, MarkX, state.CurrentPlayer)
		assert.Equal(t, Scores{}, state.Scores)
		assert.Equal(t, "Player X's turn", state.Message)
	})

	t.Run("Restart keeps scores and clears the board", func(t *testing.T) {
		// Given: a finished round with scores
		rules := New()
		prev := rules.CreateInitialState(nil)
		play(t, rules, &prev, 0, 3, 1, 4, 2)
		prev.Scores.O = 2

		// When: a new round is created from it
		state := rules.CreateInitialState(&prev)

		// Then: scores survive and everything else is reset
		assert.Equal(t, Scores{X: 1, O: 2}, state.Scores)
		assert.Equal(t, [9]Mark{}, state.Board)
		assert.Equal(t, MarkX, state.CurrentPlayer)
		assert.Nil(t, state.WinningLine)
	})
}

func TestRuleSet_ApplyInput(t *testing.T) {
	t.Run("Move places the mark and passes the turn", func(t *testing.T) {
		// Given: a fresh round
		rules := New()
		state := rules.CreateInitialState(nil)

		// When: X plays the center
		transition := rules.ApplyInput(&state, Turn{Cell: 4})

		// Then: O is next
		assert.False(t, transition.IsTerminal())
		assert.Equal(t, MarkX, state.Board[4])
		assert.Equal(t, MarkO, state.CurrentPlayer)
		assert.Equal(t, "Player O's turn", state.Message)
	})

	t.Run("Occupied or out of range cells are ignored", func(t *testing.T) {
		// Given: a board with one mark
		rules := New()
		state := rules.CreateInitialState(nil)
		play(t, rules, &state, 4)
		before := state.Clone()

		for _, cell := range []int{4, -1, 9, 100} {
			// When: an invalid cell is played
			transition := rules.ApplyInput(&state, Turn{Cell: cell})

			// Then: the state is untouched
			assert.True(t, transition.IsIgnored(), "cell %d", cell)
			assert.Equal(t, before, state)
		}
	})

	t.Run("Every winning triple ends the round", func(t *testing.T) {
		for _, combo := range WinCombos {
			// Given: X holds two cells of the triple and O plays elsewhere
			rules := New()
			state := rules.CreateInitialState(nil)
			filler := fillersFor(combo)

			// When: X completes the triple
			play(t, rules, &state, combo[0], filler[0], combo[1], filler[1])
			transition := rules.ApplyInput(&state, Turn{Cell: combo[2]})

			// Then: X wins with that line
			require.True(t, transition.IsTerminal(), "combo %v", combo)
			assert.Equal(t, entity.OutcomeWin, transition.Outcome.Kind)
			assert.Equal(t, "X", transition.Outcome.Winner)
			assert.Equal(t, combo[:], state.WinningLine)
			assert.Equal(t, 1, state.Scores.X)
			assert.Equal(t, "Player X wins!", state.Message)
		}
	})

	t.Run("Full board without a triple is a draw", func(t *testing.T) {
		// Given: a round heading to a draw
		rules := New()
		state := rules.CreateInitialState(nil)

		// When: the last cell is filled
		// X O X
		// X O O
		// O X X
		transition := play(t, rules, &state, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: nobody wins and scores are unchanged
		require.True(t, transition.IsTerminal())
		assert.Equal(t, entity.OutcomeDraw, transition.Outcome.Kind)
		assert.Empty(t, transition.Outcome.Winner)
		assert.Equal(t, Scores{}, state.Scores)
		assert.Equal(t, "Game ended in a draw!", state.Message)
	})
}

func TestRuleSet_DecodeInput(t *testing.T) {
	rules := New()

	turn, err := rules.DecodeInput([]byte(`{"cell":0}`))
	require.NoError(t, err)
	assert.Equal(t, Turn{Cell: 0}, turn)

	_, err = rules.DecodeInput([]byte(`{}`))
	require.ErrorIs(t, err, ErrCellIsRequired)

	_, err = rules.DecodeInput([]byte(`{"cell":`))
	require.Error(t, err)
}

func TestDetermineWinner(t *testing.T) {
	assert.Equal(t, MarkEmpty, DetermineWinner([9]Mark{}))
	assert.Equal(t, MarkO, DetermineWinner([9]Mark{MarkO, MarkX, MarkX, MarkX, MarkO, "", "", "", MarkO}))
}

func TestSession_TicTacToe(t *testing.T) {
	t.Run("X wins on the top row", func(t *testing.T) {
		// Given: a started session
		s := session.New[State, Turn](New())
		t.Cleanup(s.Dispose)
		s.Start()

		// When: X and O alternate on cells 0, 4, 1, 5, 2
		for _, cell := range []int{0, 4, 1, 5, 2} {
			s.HandleInput(Turn{Cell: cell})
		}

		// Then: the round is over with X as the winner
		require.Equal(t, entity.StatusTerminal, s.Status())
		assert.Equal(t, "X", s.Outcome().Winner)
		assert.Equal(t, 1, s.State().Scores.X)

		// When: further input arrives
		s.HandleInput(Turn{Cell: 8})

		// Then: it is ignored
		assert.Equal(t, MarkEmpty, s.State().Board[8])

		// When: the session restarts
		s.Restart()

		// Then: the board is cleared and the score is kept
		assert.Equal(t, entity.StatusActive, s.Status())
		assert.Equal(t, [9]Mark{}, s.State().Board)
		assert.Equal(t, 1, s.State().Scores.X)
	})
}

// fillersFor returns two cells outside combo that do not form a line with any third O cell.
func fillersFor(combo [3]int) [2]int {
	var free []int
	for cell := 0; cell < 9; cell++ {
		if cell != combo[0] && cell != combo[1] && cell != combo[2] {
			free = append(free, cell)
		}
	}

	return [2]int{free[0], free[1]}
}
