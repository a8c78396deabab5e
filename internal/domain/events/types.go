package events

// EventType defines the type of event in the system
type EventType string

const (
	// Record Events
	RecordCreated EventType = "record.created"
	RecordUpdated EventType = "record.updated"
	RecordDeleted EventType = "record.deleted"

	// Schema Events
	ModelCreated EventType = "model.created"
	ModelUpdated EventType = "model.updated"
	ModelDeleted EventType = "model.deleted"

	// System Events
	SystemStartup EventType = "system.startup"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// RecordEvent is the payload of record.* events
type RecordEvent struct {
	RecordID    int64
	ModelID     int64
	WorkspaceID int64
	UserID      int64
}

// ModelEvent is the payload of model.* events
type ModelEvent struct {
	ModelID     int64
	WorkspaceID int64
	UserID      int64
}
