package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/chartship/internal/model"
)

// DefaultFilename is the configuration file chartship looks for in the
// working directory when no --config flag is given.
const DefaultFilename = ".chartship.jsonc"

// Defaults reproducing the original deploy script.
const (
	// DefaultPublishBranch is the branch whose non-PR builds publish.
	DefaultPublishBranch = "master"

	// DefaultEncryptedFile is the encrypted credentials bundle read
	// from the working directory.
	DefaultEncryptedFile = "travis.enc"

	// DefaultCredentialsFile is where the decrypted bundle is written.
	DefaultCredentialsFile = "travis"

	// DefaultTool is the external chart build tool binary.
	DefaultTool = "chartpress"

	// DefaultToolConfig is the build tool's own configuration file,
	// read only to report which image repositories a push will touch.
	DefaultToolConfig = "chartpress.yaml"
)

// Config holds the deploy settings. The zero value is not usable;
// construct via Default or Load so every field is populated.
type Config struct {
	// PublishBranch is the branch whose non-pull-request builds run
	// the decrypt/login/push pipeline branch.
	PublishBranch string `json:"publishBranch"`

	// Registry is the container registry server address handed to the
	// login call. Empty means Docker Hub, matching a bare
	// `docker login`.
	Registry string `json:"registry"`

	// EncryptedFile is the path of the encrypted credentials bundle.
	EncryptedFile string `json:"encryptedFile"`

	// CredentialsFile is the path the decrypted bundle is written to.
	CredentialsFile string `json:"credentialsFile"`

	// Tool is the external chart build tool binary name or path.
	Tool string `json:"tool"`

	// ToolConfig is the path of the build tool's own configuration
	// file. Missing is fine — chartship then skips repository
	// validation and lets the tool fail on its own terms.
	ToolConfig string `json:"toolConfig"`
}

// Default returns a Config reproducing the original deploy script.
func Default() *Config {
	return &Config{
		PublishBranch:   DefaultPublishBranch,
		Registry:        "",
		EncryptedFile:   DefaultEncryptedFile,
		CredentialsFile: DefaultCredentialsFile,
		Tool:            DefaultTool,
		ToolConfig:      DefaultToolConfig,
	}
}

// Load reads the configuration file at path and merges it over the
// defaults. An empty path means DefaultFilename, and a missing
// DefaultFilename is not an error — the defaults alone are a complete
// configuration. An explicitly requested file that does not exist is
// a config error.
//
// Returns a model.CLIError with ExitConfigError on unreadable or
// malformed files.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFilename
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read config file %q", path), err)
	}

	// Strip JSONC comments and trailing commas, then parse with the
	// standard library. Unknown fields are ignored so a config file
	// can carry settings for future chartship versions.
	cfg := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %q", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %q", path), err)
	}

	return cfg, nil
}

// Validate checks that no required setting has been overridden to an
// empty value. Registry is the one legitimately empty field.
func (c *Config) Validate() error {
	if c.PublishBranch == "" {
		return fmt.Errorf("publishBranch must not be empty")
	}
	if c.EncryptedFile == "" {
		return fmt.Errorf("encryptedFile must not be empty")
	}
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentialsFile must not be empty")
	}
	if c.Tool == "" {
		return fmt.Errorf("tool must not be empty")
	}
	return nil
}
