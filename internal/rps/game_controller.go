package rps

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/rng"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
)

const (
	DefaultHistoryCap = 5

	startMessage = "Choose your weapon!"
)

// beats maps a choice to the one it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// RuleSet plays against a uniformly random computer. It never reaches a terminal state.
type RuleSet struct {
	historyCap int
	rng        rng.Provider
}

func New(historyCap int, provider rng.Provider) *RuleSet {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}

	return &RuleSet{
		historyCap: historyCap,
		rng:        provider,
	}
}

func (that *RuleSet) Game() entity.GameID {
	return entity.GameRockPaperScissors
}

// CreateInitialState resets scores and history, restart included.
func (that *RuleSet) CreateInitialState(_ *State) State {
	return State{
		History: []Round{},
		Message: startMessage,
	}
}

func (that *RuleSet) ApplyInput(state *State, throw Throw) session.Transition[State] {
	if !throw.Choice.IsValid() {
		return session.Ignore[State]()
	}

	computer := rng.Pick(that.rng, Choices)
	result := DetermineWinner(throw.Choice, computer)

	switch result {
	case ResultPlayer:
		state.PlayerScore++
		state.Message = "You win!"
	case ResultComputer:
		state.ComputerScore++
		state.Message = "Computer wins!"
	case ResultTie:
		state.Ties++
		state.Message = "It's a tie!"
	}

	state.RoundsPlayed++
	round := Round{
		Number:         state.RoundsPlayed,
		PlayerChoice:   throw.Choice,
		ComputerChoice: computer,
		Result:         result,
	}

	state.LastRound = &round
	state.History = pushRound(state.History, round, that.historyCap)

	return session.Continue[State]()
}

func (that *RuleSet) DecodeInput(payload []byte) (Throw, error) {
	var throw Throw

	if err := json.Unmarshal(payload, &throw); err != nil {
		return Throw{}, fmt.Errorf("failed to unmarshal throw: %w", err)
	}

	return throw, nil
}

// DetermineWinner - returns who takes the round between player and computer.
func DetermineWinner(player, computer Choice) Result {
	if player == computer {
		return ResultTie
	}

	if beats[player] == computer {
		return ResultPlayer
	}

	return ResultComputer
}

// pushRound - prepends round and drops the oldest entries beyond limit.
func pushRound(history []Round, round Round, limit int) []Round {
	next := make([]Round, 0, min(len(history)+1, limit))
	next = append(next, round)

	for _, past := range history {
		if len(next) == limit {
			break
		}
		next = append(next, past)
	}

	return next
}
