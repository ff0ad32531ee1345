package ci

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names supplied by the CI runner. These are
// read-only inputs with process lifetime; chartship never sets them.
const (
	// EnvPullRequest is "false" for branch builds and the pull request
	// number for PR builds.
	EnvPullRequest = "TRAVIS_PULL_REQUEST"

	// EnvBranch is the branch the build was triggered for.
	EnvBranch = "TRAVIS_BRANCH"

	// EnvCommitRange is the commit range of the push being built,
	// handed verbatim to the chart build tool.
	EnvCommitRange = "TRAVIS_COMMIT_RANGE"

	// EnvRegistryUsername and EnvRegistryPassword are the container
	// registry credentials.
	EnvRegistryUsername = "DOCKER_USERNAME"
	EnvRegistryPassword = "DOCKER_PASSWORD"

	// EnvEncryptionKey and EnvEncryptionIV hold the hex-encoded
	// AES-256-CBC key and IV for the credentials bundle. The variable
	// names carry the CI system's per-repository secret identifier.
	EnvEncryptionKey = "encrypted_d8355cc3d845_key"
	EnvEncryptionIV  = "encrypted_d8355cc3d845_iv"
)

// Env is a snapshot of the CI environment taken once at startup.
// All fields are raw string values as the runner supplied them.
type Env struct {
	// PullRequest is the raw value of TRAVIS_PULL_REQUEST.
	PullRequest string

	// Branch is the branch the build runs for.
	Branch string

	// CommitRange is the commit range to hand to the build tool.
	// It is passed through byte-for-byte, including when empty.
	CommitRange string

	// RegistryUsername and RegistryPassword authenticate to the
	// container registry on publishing runs.
	RegistryUsername string
	RegistryPassword string

	// EncryptionKeyHex and EncryptionIVHex are the hex-encoded key and
	// IV for decrypting the credentials bundle.
	EncryptionKeyHex string
	EncryptionIVHex  string
}

// FromEnviron reads the CI environment variables into an Env snapshot.
// Missing variables come back as empty strings; validation is deferred
// to ValidatePublish so non-publishing runs never require them.
func FromEnviron() Env {
	return Env{
		PullRequest:      os.Getenv(EnvPullRequest),
		Branch:           os.Getenv(EnvBranch),
		CommitRange:      os.Getenv(EnvCommitRange),
		RegistryUsername: os.Getenv(EnvRegistryUsername),
		RegistryPassword: os.Getenv(EnvRegistryPassword),
		EncryptionKeyHex: os.Getenv(EnvEncryptionKey),
		EncryptionIVHex:  os.Getenv(EnvEncryptionIV),
	}
}

// ShouldPublish reports whether this build qualifies for the
// decrypt/login/push branch of the pipeline: a non-pull-request build
// of the publish branch.
//
// The comparison is exact string equality on the raw values. Any
// PullRequest value other than the literal "false" (a PR number, an
// empty string on a non-CI machine) disqualifies the build.
func (e Env) ShouldPublish(publishBranch string) bool {
	return e.PullRequest == "false" && e.Branch == publishBranch
}

// ValidatePublish checks that every input the publishing branch needs
// is present. It is only called after ShouldPublish returns true, so a
// missing variable here is a CI misconfiguration worth a precise error.
func (e Env) ValidatePublish() error {
	var missing []string

	if e.RegistryUsername == "" {
		missing = append(missing, EnvRegistryUsername)
	}
	if e.RegistryPassword == "" {
		missing = append(missing, EnvRegistryPassword)
	}
	if e.EncryptionKeyHex == "" {
		missing = append(missing, EnvEncryptionKey)
	}
	if e.EncryptionIVHex == "" {
		missing = append(missing, EnvEncryptionIV)
	}

	if len(missing) > 0 {
		return fmt.Errorf("publishing build is missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
