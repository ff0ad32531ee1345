// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Stdout is reserved for command output and the external build tool's
// own streams, so all chartship diagnostics go to stderr. Commands
// accept a context and extract the logger from it, enabling scoped,
// structured logging throughout the pipeline.
package logger
