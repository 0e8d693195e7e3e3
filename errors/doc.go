// Package errors provides structured error types for the abi-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, interface/implementation type names,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDowncast, errors.KindDowncastMismatch).
//		Interface("Plugin").
//		Impl("TextPlugin").
//		Detail("type identifiers differ").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DowncastMismatch("Plugin", "TextPlugin")
//	err := errors.NotPrefix("Point", "struct")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
