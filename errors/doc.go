// Package errors provides the typed failure every engine call funnels through.
//
// JsRT reports failures as integer status codes. Check turns a code into an
// *Error (or nil on success) tagged with the Phase where it happened and a
// Kind derived from the code's category:
//
//	if err := errors.Check(errors.PhaseContext, sys.SetCurrentContext(cx), "JsSetCurrentContext"); err != nil {
//		return nil, err
//	}
//
// Host-side failures that never reach the engine (released handles, a guard
// over the wrong context, a panicking callback) use the Builder:
//
//	err := errors.New(errors.PhaseContext, errors.KindContextMismatch).
//		Path("multiply").
//		Detail("guard is active on another context").
//		Build()
//
// Script failures carry the thrown value's string form in Exception.
// Match errors with the standard errors.Is against the exported sentinels.
package errors
