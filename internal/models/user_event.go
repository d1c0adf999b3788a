package models

// User lifecycle event types.
const (
	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
)

// UserEvent describes a change to a user, published to Kafka.
type UserEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Type      string `json:"type"`      // Type is one of UserRegistered, UserUpdated, UserDeleted.
	UserID    int64  `json:"user_id"`   // UserID is the identifier of the affected user.
	Username  string `json:"username"`  // Username at the time of the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix time (in seconds) of the change.
}
