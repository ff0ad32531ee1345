package registry

import (
	"context"
	"fmt"

	"github.com/distribution/reference"
	registrytypes "github.com/docker/docker/api/types/registry"

	"github.com/mmr-tortoise/chartship/internal/logger"
	"github.com/mmr-tortoise/chartship/internal/model"
)

// loginAPI is the slice of the Docker SDK that the login call uses,
// extracted so tests can record and fail the call without a daemon.
type loginAPI interface {
	RegistryLogin(ctx context.Context, auth registrytypes.AuthConfig) (registrytypes.AuthenticateOKBody, error)
}

// Login authenticates to a container registry through the Docker
// daemon, the programmatic equivalent of `docker login`. An empty
// serverAddress means Docker Hub, matching the docker CLI.
//
// Returns a model.CLIError with ExitRegistryError on failure, which
// aborts the pipeline before the build stage runs.
func (c *Client) Login(ctx context.Context, username, password, serverAddress string) error {
	return login(ctx, c.inner, username, password, serverAddress)
}

func login(ctx context.Context, api loginAPI, username, password, serverAddress string) error {
	if username == "" || password == "" {
		return model.NewCLIError(model.ExitRegistryError, "registry credentials are not set")
	}

	resp, err := api.RegistryLogin(ctx, registrytypes.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: serverAddress,
	})
	if err != nil {
		return model.WrapCLIError(model.ExitRegistryError,
			fmt.Sprintf("registry login failed for %s", displayServer(serverAddress)), err)
	}

	logger.DebugKV(ctx, "registry login succeeded",
		"server", displayServer(serverAddress),
		"status", resp.Status,
	)
	return nil
}

// displayServer names the registry for log and error output.
func displayServer(serverAddress string) string {
	if serverAddress == "" {
		return "Docker Hub"
	}
	return serverAddress
}

// ValidateRepository checks that name parses as a normalized registry
// repository reference (e.g. "jupyterhub/k8s-binderhub" or
// "quay.io/org/image"). Used on the repositories derived from the
// build tool's configuration before a push build starts, so a typo in
// an image prefix fails before any image is built.
func ValidateRepository(name string) error {
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return fmt.Errorf("invalid image repository %q: %w", name, err)
	}
	return nil
}
