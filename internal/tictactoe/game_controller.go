package tictactoe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

var (
	ErrCellIsRequired = errors.New("cell is required")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// RuleSet plays two local players, X always opening.
type RuleSet struct{}

func New() *RuleSet {
	return &RuleSet{}
}

func (that *RuleSet) Game() entity.GameID {
	return entity.GameTicTacToe
}

func (that *RuleSet) CreateInitialState(prev *State) State {
	state := State{
		CurrentPlayer: MarkX,
		Message:       turnMessage(MarkX),
	}

	// scores live as long as the session
	if prev != nil {
		state.Scores = prev.Scores
	}

	return state
}

func (that *RuleSet) ApplyInput(state *State, turn Turn) session.Transition[State] {
	if !isValidMove(state, turn.Cell) {
		return session.Ignore[State]()
	}

	player := state.CurrentPlayer
	state.Board[turn.Cell] = player

	if line, ok := winningLine(state.Board, player); ok {
		state.WinningLine = line[:]
		if player == MarkX {
			state.Scores.X++
		} else {
			state.Scores.O++
		}
		state.Message = fmt.Sprintf("Player %s wins!", player)

		return session.Terminal[State](entity.Outcome{
			Kind:    entity.OutcomeWin,
			Winner:  string(player),
			Message: state.Message,
		})
	}

	if isBoardFull(state.Board) {
		state.Message = "Game ended in a draw!"

		return session.Terminal[State](entity.Outcome{
			Kind:    entity.OutcomeDraw,
			Message: state.Message,
		})
	}

	state.CurrentPlayer = toggleMark(player)
	state.Message = turnMessage(state.CurrentPlayer)

	return session.Continue[State]()
}

func (that *RuleSet) DecodeInput(payload []byte) (Turn, error) {
	var raw struct {
		Cell *int `json:"cell"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return Turn{}, fmt.Errorf("failed to unmarshal turn: %w", err)
	}

	if raw.Cell == nil {
		return Turn{}, ErrCellIsRequired
	}

	return Turn{Cell: *raw.Cell}, nil
}

// isValidMove - checks the cell is on the board and still empty.
func isValidMove(state *State, cell int) bool {
	if cell < 0 || cell >= len(state.Board) {
		return false
	}

	return state.Board[cell] == MarkEmpty
}

// winningLine - finds a triple fully owned by player.
func winningLine(board [9]Mark, player Mark) ([3]int, bool) {
	for _, combo := range WinCombos {
		if board[combo[0]] == player && board[combo[1]] == player && board[combo[2]] == player {
			return combo, true
		}
	}

	return [3]int{}, false
}

// DetermineWinner - returns the owner of a complete triple, if any.
func DetermineWinner(board [9]Mark) Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != MarkEmpty && a == b && b == c {
			return a
		}
	}

	return MarkEmpty
}

func isBoardFull(board [9]Mark) bool {
	for _, cell := range board {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

func toggleMark(currentMark Mark) Mark {
	if currentMark == MarkX {
		return MarkO
	}
	return MarkX
}

func turnMessage(player Mark) string {
	return fmt.Sprintf("Player %s's turn", player)
}
