package entity

const (
	StatusIdle     Status = "idle"
	StatusActive   Status = "active"
	StatusTerminal Status = "terminal"
)

const (
	OutcomeWin      = "win"
	OutcomeDraw     = "draw"
	OutcomeComplete = "complete"
)

// Status is the lifecycle state of a game session.
type Status string

// Outcome describes how a session reached its terminal state.
type Outcome struct {
	Kind           string `json:"kind"`
	Winner         string `json:"winner,omitempty"`
	Moves          int    `json:"moves,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	Message        string `json:"message"`
}

// Snapshot is the read-only view of a session published after every state change.
type Snapshot struct {
	SessionID string   `json:"session_id"`
	Game      GameID   `json:"game"`
	Status    Status   `json:"status"`
	Outcome   *Outcome `json:"outcome,omitempty"`
	State     any      `json:"state,omitempty"`
	Version   uint64   `json:"version"`
}

func (that *Snapshot) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Snapshot) IsTerminal() bool {
	return that.Status == StatusTerminal
}

// Masker is implemented by states that hide details from the player before they leave the process.
type Masker interface {
	Masked() any
}

// Masked returns a copy of the snapshot with the state masked if it supports it.
func (that Snapshot) Masked() Snapshot {
	if masker, ok := that.State.(Masker); ok {
		that.State = masker.Masked()
	}

	return that
}
