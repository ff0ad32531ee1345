package registry

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/chartship/internal/model"
)

// defaultPingTimeout is the maximum duration to wait for a Docker
// daemon response during a Ping operation. Generous enough for Docker
// Desktop on macOS, which responds slower than native Linux Docker.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client for registry
// authentication. It handles automatic Docker socket detection across
// platforms and maps daemon failures to the registry exit code, since
// from the pipeline's point of view an unreachable daemon and a failed
// login abort the same stage.
type Client struct {
	// inner is the underlying Docker SDK client. Wrapped rather than
	// embedded to keep the exposed surface down to what the pipeline
	// needs.
	inner *client.Client
}

// NewClient creates a new Docker client with automatic socket detection.
//
// Detection priority:
//  1. DOCKER_HOST environment variable (used as-is when set)
//  2. Platform default socket paths:
//     - Linux: /var/run/docker.sock
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
//
// Returns a model.CLIError with ExitRegistryError if no Docker socket
// is found or the client cannot be created.
func NewClient() (*Client, error) {
	// DOCKER_HOST wins unconditionally; the SDK parses the string.
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitRegistryError, "Docker socket not found", err)
	}

	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client connected to the specified
// host connection string (e.g. "unix:///var/run/docker.sock").
func newClientWithHost(host string) (*Client, error) {
	// Version negotiation keeps the client compatible with whatever
	// daemon version the CI image ships.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitRegistryError,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker socket path for the current
// platform by probing known locations and returning the first that
// exists. Existence is checked instead of connecting because it is
// fast and needs no running daemon; Ping verifies connectivity.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop either symlinks the standard path or puts
		// the socket under the user's home directory.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// Windows uses a Named Pipe; os.Stat does not work on pipes,
		// so probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket probes a list of Unix socket paths, most-preferred
// first, and returns the Docker host URI for the first that exists.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable and responsive,
// waiting up to defaultPingTimeout.
//
// Returns a model.CLIError with ExitRegistryError if the daemon does
// not respond.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitRegistryError,
			"Docker daemon is not responding — is Docker running?", err)
	}
	return nil
}

// Close releases all resources held by the Docker client.
// Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
