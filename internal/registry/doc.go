// Package registry handles container registry authentication for the
// chartship CLI.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows) and DOCKER_HOST override
//   - Registry login through the Docker Engine API, the programmatic
//     equivalent of `docker login`
//   - Repository name validation for the image names a push build
//     will publish
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package registry
