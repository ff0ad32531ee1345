package model

import (
	"fmt"
	"strings"
)

// Stage identifies one step of the deploy pipeline.
//
// The pipeline is a straight-line sequence: on a publishing run the
// order is always decrypt → login → build; on a non-publishing run
// only build executes.
type Stage string

const (
	// StageDecrypt decrypts the credentials bundle and restricts its
	// file permissions.
	StageDecrypt Stage = "decrypt"

	// StageLogin authenticates to the container registry.
	StageLogin Stage = "login"

	// StageBuild invokes the external chart build tool.
	StageBuild Stage = "build"
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid checks whether the Stage value is one of the predefined stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageDecrypt, StageLogin, StageBuild:
		return true
	default:
		return false
	}
}

// ParseStage converts a string to a Stage.
// Returns an error if the string does not match any valid stage.
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.ToLower(s))
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid pipeline stage: %q (valid: decrypt, login, build)", s)
	}
	return stage, nil
}

// DeployReport summarizes one deploy pipeline run. It is produced by
// the deploy command and rendered as text or JSON depending on the
// --json global flag.
type DeployReport struct {
	// Branch is the CI branch the run was triggered for.
	Branch string `json:"branch"`

	// PullRequest is the raw CI pull-request indicator ("false" for
	// branch builds, a PR number otherwise).
	PullRequest string `json:"pullRequest"`

	// CommitRange is the commit range handed to the build tool,
	// byte-for-byte as the CI runner supplied it.
	CommitRange string `json:"commitRange"`

	// Publish records whether the publish gate passed, i.e. whether
	// the decrypt/login/push branch of the pipeline ran.
	Publish bool `json:"publish"`

	// Stages lists the stages that executed, in order.
	Stages []Stage `json:"stages"`

	// CredentialsFile is the path of the decrypted credentials file.
	// Empty when the publish gate did not pass.
	CredentialsFile string `json:"credentialsFile,omitempty"`

	// DryRun indicates the run only printed its plan without
	// executing any stage.
	DryRun bool `json:"dryRun,omitempty"`
}

// ExitCode defines the process exit codes for the chartship CLI.
// The codes identify the first failing pipeline stage so a CI system
// can tell a bad decryption key from a registry outage without
// parsing log output.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the deploy configuration file or the
	// CI environment was invalid.
	ExitConfigError ExitCode = 2

	// ExitDecryptError indicates the credentials bundle could not be
	// decrypted (missing input file, bad key/IV, corrupt ciphertext).
	ExitDecryptError ExitCode = 3

	// ExitRegistryError indicates registry authentication failed or
	// the Docker daemon was not reachable.
	ExitRegistryError ExitCode = 4

	// ExitBuildError indicates the external chart build tool exited
	// non-zero.
	ExitBuildError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate pipeline errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
