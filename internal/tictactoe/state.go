package tictactoe

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

type Mark string

type Scores struct {
	X int `json:"x"`
	O int `json:"o"`
}

// Of returns the score of mark.
func (that Scores) Of(mark Mark) int {
	if mark == MarkO {
		return that.O
	}
	return that.X
}

// State is the board of one round plus the scores carried across restarts.
type State struct {
	Board         [9]Mark `json:"board"`
	CurrentPlayer Mark    `json:"current_player"`
	Scores        Scores  `json:"scores"`
	WinningLine   []int   `json:"winning_line,omitempty"`
	Message       string  `json:"message"`
}

func (that State) Clone() State {
	that.WinningLine = append([]int(nil), that.WinningLine...)
	return that
}

// Turn places the current player's mark on Cell.
type Turn struct {
	Cell int `json:"cell"`
}
