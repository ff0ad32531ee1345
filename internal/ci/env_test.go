package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromEnviron verifies the snapshot picks up the exact variable
// names the CI runner sets. The names are a compatibility contract,
// so the test spells them out rather than using the constants.
func TestFromEnviron(t *testing.T) {
	t.Setenv("TRAVIS_PULL_REQUEST", "false")
	t.Setenv("TRAVIS_BRANCH", "master")
	t.Setenv("TRAVIS_COMMIT_RANGE", "abc123...def456")
	t.Setenv("DOCKER_USERNAME", "ci-bot")
	t.Setenv("DOCKER_PASSWORD", "hunter2")
	t.Setenv("encrypted_d8355cc3d845_key", "00ff")
	t.Setenv("encrypted_d8355cc3d845_iv", "ff00")

	env := FromEnviron()

	assert.Equal(t, "false", env.PullRequest)
	assert.Equal(t, "master", env.Branch)
	assert.Equal(t, "abc123...def456", env.CommitRange)
	assert.Equal(t, "ci-bot", env.RegistryUsername)
	assert.Equal(t, "hunter2", env.RegistryPassword)
	assert.Equal(t, "00ff", env.EncryptionKeyHex)
	assert.Equal(t, "ff00", env.EncryptionIVHex)
}

// TestShouldPublish exercises the publish gate across the combinations
// of pull-request indicator and branch. Only the exact pair
// ("false", publish branch) qualifies.
func TestShouldPublish(t *testing.T) {
	tests := []struct {
		name        string
		pullRequest string
		branch      string
		want        bool
	}{
		{"branch build on master", "false", "master", true},
		{"pull request against master", "1234", "master", false},
		{"branch build on feature branch", "false", "feature-x", false},
		{"pull request against feature branch", "1234", "feature-x", false},
		{"empty environment", "", "", false},
		{"case sensitive pull request value", "False", "master", false},
		{"case sensitive branch", "false", "Master", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Env{PullRequest: tt.pullRequest, Branch: tt.branch}
			assert.Equal(t, tt.want, env.ShouldPublish("master"))
		})
	}
}

// TestShouldPublish_CustomBranch verifies the gate follows the
// configured publish branch rather than hardcoding master.
func TestShouldPublish_CustomBranch(t *testing.T) {
	env := Env{PullRequest: "false", Branch: "main"}
	assert.True(t, env.ShouldPublish("main"))
	assert.False(t, env.ShouldPublish("master"))
}

// TestValidatePublish verifies that missing publishing inputs are all
// reported at once, by variable name, so a CI misconfiguration can be
// fixed in one pass.
func TestValidatePublish(t *testing.T) {
	complete := Env{
		RegistryUsername: "ci-bot",
		RegistryPassword: "hunter2",
		EncryptionKeyHex: "00",
		EncryptionIVHex:  "00",
	}
	assert.NoError(t, complete.ValidatePublish())

	err := Env{RegistryUsername: "ci-bot"}.ValidatePublish()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCKER_PASSWORD")
	assert.Contains(t, err.Error(), "encrypted_d8355cc3d845_key")
	assert.Contains(t, err.Error(), "encrypted_d8355cc3d845_iv")
	assert.NotContains(t, err.Error(), "DOCKER_USERNAME")
}
