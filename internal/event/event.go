package event

type Type string

const (
	TypeSessionUpdated Type = "session.updated"
	TypeSessionCleared Type = "session.cleared"
	TypePasswordReset  Type = "session.password_reset"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
