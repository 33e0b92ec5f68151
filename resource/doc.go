// Package resource provides the handle table that lets host values cross
// the engine ABI.
//
// Go values cannot be handed to C as raw pointers, and a closure is not
// pointer-sized anyway. The table stores the value and hands out a small
// integer Handle that is safe to place in the engine's opaque callback
// state slot; the trampoline turns the handle back into the value.
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, myValue)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value; a Dropper value is dropped here
//	value, ok := table.Remove(handle)
//
// # Type Safety
//
// Handles are typed; GetTyped refuses a handle inserted under another type
// ID, which keeps a stale or forged token from being interpreted as the
// wrong kind of state.
//
// # Observers
//
// Observers receive EventCreated and EventDropped for every handle. The
// runtime package logs callback state lifecycle through one; tests use them
// to verify that each value is released exactly once.
//
// # Memory Management
//
// Values are not garbage collected while their handle is live. The owner
// must call Remove (or Close the table) once nothing can present the handle
// again; a handle is only reused after its entry was removed.
package resource
