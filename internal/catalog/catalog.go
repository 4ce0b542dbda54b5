// Package catalog maps game ids to their rule sets and opens sessions for them.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/arcade-backend/internal/apperror"
	"github.com/rocketscienceinc/arcade-backend/internal/config"
	"github.com/rocketscienceinc/arcade-backend/internal/entity"
	"github.com/rocketscienceinc/arcade-backend/internal/memory"
	"github.com/rocketscienceinc/arcade-backend/internal/rng"
	"github.com/rocketscienceinc/arcade-backend/internal/rps"
	"github.com/rocketscienceinc/arcade-backend/internal/session"
	"github.com/rocketscienceinc/arcade-backend/internal/tictactoe"
)

type factory func(opts ...session.Option) session.Handle

type Catalog struct {
	logger        *slog.Logger
	sessionLogger *slog.Logger
	clock         clockwork.Clock

	games     []entity.GameInfo
	factories map[entity.GameID]factory
}

func New(logger *slog.Logger, clock clockwork.Clock, provider rng.Provider, conf config.Games) (*Catalog, error) {
	memoryRules, err := memory.New(memory.Config{
		PairCount:            conf.PairCount,
		MatchResolveDelay:    conf.MatchResolveDelay,
		MismatchResolveDelay: conf.MismatchResolveDelay,
		TickInterval:         conf.TickInterval,
		Symbols:              memory.DefaultSymbols,
	}, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	ticTacToeRules := tictactoe.New()
	rpsRules := rps.New(conf.HistoryCap, provider)

	return &Catalog{
		logger:        logger.With("component", "catalog"),
		sessionLogger: logger,
		clock:         clock,
		games: []entity.GameInfo{
			{ID: entity.GameMemory, Title: "Memory Game", Description: "Find all matching pairs of cards."},
			{ID: entity.GameTicTacToe, Title: "Tic-Tac-Toe", Description: "Classic game of X and O for two players."},
			{ID: entity.GameRockPaperScissors, Title: "Rock Paper Scissors", Description: "Beat the computer in this game of chance."},
		},
		factories: map[entity.GameID]factory{
			entity.GameTicTacToe: func(opts ...session.Option) session.Handle {
				return session.New[tictactoe.State, tictactoe.Turn](ticTacToeRules, opts...)
			},
			entity.GameMemory: func(opts ...session.Option) session.Handle {
				return session.New[memory.State, memory.Flip](memoryRules, opts...)
			},
			entity.GameRockPaperScissors: func(opts ...session.Option) session.Handle {
				return session.New[rps.State, rps.Throw](rpsRules, opts...)
			},
		},
	}, nil
}

// Games returns the selectable games in display order.
func (that *Catalog) Games() []entity.GameInfo {
	return append([]entity.GameInfo(nil), that.games...)
}

// Open creates an idle session for gameID. An empty sessionID gets a generated one.
func (that *Catalog) Open(gameID entity.GameID, sessionID string) (session.Handle, error) {
	create, ok := that.factories[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownGame, gameID)
	}

	handle := create(
		session.WithID(sessionID),
		session.WithClock(that.clock),
		session.WithLogger(that.sessionLogger),
	)

	that.logger.Debug("session opened", "game", gameID, "session_id", handle.ID())

	return handle, nil
}
