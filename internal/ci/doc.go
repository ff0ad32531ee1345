// Package ci reads the continuous-integration environment into a typed
// snapshot and decides whether a build qualifies for publishing.
//
// The variable names are part of the compatibility contract with the
// CI runner and must not be renamed: chartship is a drop-in
// replacement for a shell script that read exactly these variables.
package ci
