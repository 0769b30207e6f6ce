package event

import "time"

// Type identifies the event type string.
type Type string

// Event captures the canonical event envelope.
//
// Seq, Hash, PrevHash and ChainHash are assigned by the journal on append and
// are zero on events returned by a decider.
type Event struct {
	ProjectID   string
	Seq         uint64
	Hash        string
	PrevHash    string
	ChainHash   string
	Timestamp   time.Time
	Type        Type
	ActorID     string
	RequestID   string
	EntityType  string
	EntityID    string
	PayloadJSON []byte
}
