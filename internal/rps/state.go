package rps

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

const (
	ResultPlayer   Result = "player"
	ResultComputer Result = "computer"
	ResultTie      Result = "tie"
)

// Choices is the set the computer draws from.
var Choices = []Choice{Rock, Paper, Scissors}

type Choice string

func (that Choice) IsValid() bool {
	switch that {
	case Rock, Paper, Scissors:
		return true
	default:
		return false
	}
}

type Result string

type Round struct {
	Number         int    `json:"round"`
	PlayerChoice   Choice `json:"player_choice"`
	ComputerChoice Choice `json:"computer_choice"`
	Result         Result `json:"result"`
}

// State keeps the running score. History is most recent first.
type State struct {
	PlayerScore   int     `json:"player_score"`
	ComputerScore int     `json:"computer_score"`
	Ties          int     `json:"ties"`
	RoundsPlayed  int     `json:"rounds_played"`
	History       []Round `json:"history"`
	LastRound     *Round  `json:"last_round,omitempty"`
	Message       string  `json:"message"`
}

func (that State) Clone() State {
	that.History = append([]Round{}, that.History...)
	if that.LastRound != nil {
		last := *that.LastRound
		that.LastRound = &last
	}
	return that
}

// Throw is the player's choice for one round.
type Throw struct {
	Choice Choice `json:"choice"`
}
