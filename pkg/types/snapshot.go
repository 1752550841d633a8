package types

import "github.com/DoyleJ11/teambot/internal/engine"

// ServerMessage is what the websocket pushes to subscribers.
type ServerMessage struct {
	Type    string           `json:"type"` // "StateSnapshot" | "Result" | "Error"
	Version int              `json:"version,omitempty"`
	State   *engine.Snapshot `json:"state,omitempty"`
	Result  *ResultRecord    `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgResult        = "Result"
	MsgError         = "Error"
)
