package engine

func NewState(sessionID string) State {
	return State{
		SessionID: sessionID,
		Phase:     PhaseOpen,
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
