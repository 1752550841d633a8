package engine

import (
	"fmt"
	"slices"
)

// Transitions lists the commands each phase accepts. Join, Leave and
// Generate land in Open or TeamsGenerated depending on the roster; see Apply.
var Transitions = map[Phase][]CommandType{
	PhaseOpen:           {CmdJoin, CmdLeave, CmdGenerate, CmdClose, CmdReset, CmdQuery},
	PhaseTeamsGenerated: {CmdJoin, CmdLeave, CmdGenerate, CmdClose, CmdReset, CmdQuery},
	PhaseClosed:         {CmdReset, CmdQuery},
}

var knownCommands = map[CommandType]bool{
	CmdJoin: true, CmdLeave: true, CmdGenerate: true,
	CmdClose: true, CmdReset: true, CmdQuery: true,
}

func checkTransition(p Phase, cmd CommandType) error {
	if !knownCommands[cmd] {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd)
	}
	if slices.Contains(Transitions[p], cmd) {
		return nil
	}
	if p == PhaseClosed {
		if cmd == CmdClose {
			return ErrAlreadyClosed
		}
		return fmt.Errorf("%w: %s requires a reset first", ErrSessionClosed, cmd)
	}
	return fmt.Errorf("%w: phase %q", ErrUnsupportedCommand, p)
}
