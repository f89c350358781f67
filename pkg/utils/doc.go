// Package utils provides shared helpers for the cogito library.
//
// It contains concurrent execution primitives (concurrent.go) and panic
// recovery helpers (recovery.go) used by the validation and analysis
// pipelines.
package utils
