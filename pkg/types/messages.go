// Package types holds the records exchanged with the chat transport. The
// transport parses chat text into a CommandRecord and renders the
// ResultRecord back into a message; neither side sees engine internals.
package types

// Command names accepted on the wire.
const (
	CommandJoin     = "join"
	CommandLeave    = "leave"
	CommandGenerate = "generate"
	CommandClose    = "close"
	CommandReset    = "reset"
	CommandQuery    = "query"
)

type CommandRecord struct {
	SessionID     string `json:"session_id" validate:"required,max=256"`
	ParticipantID string `json:"participant_id,omitempty" validate:"required_if=Command join,required_if=Command leave,max=256"`
	Command       string `json:"command" validate:"required,oneof=join leave generate close reset query"`
	TeamCount     int    `json:"team_count,omitempty" validate:"required_if=Command generate"`
	// Seed makes a generate reproducible. Shuffle without a Seed asks the
	// server to draw one; the seed used comes back in the result.
	Seed    *int64 `json:"seed,omitempty"`
	Shuffle bool   `json:"shuffle,omitempty"`
}

type ResultRecord struct {
	OK        bool       `json:"ok"`
	SessionID string     `json:"session_id,omitempty"`
	Version   int        `json:"version"`
	State     string     `json:"state,omitempty"`
	Roster    []string   `json:"roster,omitempty"`
	Teams     [][]string `json:"teams,omitempty"`
	Seed      *int64     `json:"seed,omitempty"`
	Error     string     `json:"error,omitempty"` // invalid_argument | invalid_transition | not_found | internal
	Message   string     `json:"message,omitempty"`
}
