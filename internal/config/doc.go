// Package config loads the optional chartship deploy configuration.
//
// Every setting has a default that reproduces the original CI deploy
// script exactly, so a repository needs no configuration file at all.
// A `.chartship.jsonc` in the working directory can override the
// defaults; the file is JSONC (JSON with Comments), parsed with
// github.com/tidwall/jsonc before the standard encoding/json pass.
package config
