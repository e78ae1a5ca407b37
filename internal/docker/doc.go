// Package docker provides Docker Engine API wrappers and compose stack
// lifecycle management for the voxdeploy CLI.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Compose stack lifecycle via the docker compose CLI plugin:
//     down, build, up
//   - Stack container discovery via the Docker API, filtered on the
//     "com.docker.compose.project" label
//   - The disposable GPU passthrough smoke test container
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
// Compose operations shell out to `docker compose` because the stack is
// defined by an operator-owned compose file that the plugin is the
// authority on.
package docker
