// Package sys is the raw boundary to the JsRT engine ABI.
//
// Every entry point mirrors one JsRT C function and reports the engine's
// status code instead of a Go error; the runtime package converts codes
// into typed errors. Handles are opaque uintptr-sized tokens and carry no
// ownership information.
//
// # Backends
//
// Building with the chakracore tag (and cgo enabled) links against
// libChakraCore:
//
//	go build -tags chakracore ./...
//
// Without the tag an in-process emulation of the same ABI backed by goja is
// used. The emulation keeps the JsRT calling conventions (receiver in
// argument slot 0, wide-character property names, per-context pending
// exception, explicit reference counts) so the layers above behave the same
// on both backends.
//
// # Native functions
//
// The engine calls back into Go through a single fixed trampoline. Install
// it once with SetNativeHandler; CreateFunction binds new function values to
// it together with an opaque callback state token.
package sys
