package resource

// Handle is an opaque reference to a value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType tells observers what happened to a handle.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Backend provides the underlying storage mechanism for a table.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// TypeID returns the type a handle was created with.
	TypeID(handle Handle) (uint32, bool)

	// Drop removes a value and returns (value, true) if the handle was live.
	Drop(handle Handle) (any, bool)

	// Len returns the number of live handles.
	Len() int

	// Close releases all values held by the backend.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup when their
// handle is removed.
type Dropper interface {
	Drop()
}
