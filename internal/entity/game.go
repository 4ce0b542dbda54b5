package entity

const (
	GameTicTacToe         GameID = "tic-tac-toe"
	GameMemory            GameID = "memory"
	GameRockPaperScissors GameID = "rock-paper-scissors"
)

// GameID identifies a rule set.
type GameID string

// GameInfo describes a game for the selection screen.
type GameInfo struct {
	ID          GameID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
