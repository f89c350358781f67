// Package validation provides coherence checks over reasoning graph
// snapshots.
//
// Three validators cover the causal, epistemic, and structural rules; the
// Validator orchestrator runs them concurrently and merges their findings
// into a single ValidationReport. Validators are read-only and report
// violations as data, never as errors.
package validation
