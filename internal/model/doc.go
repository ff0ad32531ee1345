// Package model defines the domain types and value objects for the
// chartship CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (DeployReport, Stage) describe a single deploy pipeline run
// and are transient — a run lives and dies with one process invocation,
// the same as the CI shell script chartship replaces.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
