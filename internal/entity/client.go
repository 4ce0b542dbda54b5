package entity

// Client is a connected player with at most one active session.
type Client struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	Game      GameID `json:"game,omitempty"`
}

func (that *Client) InSession() bool {
	return that.SessionID != ""
}
