package model

import (
	"fmt"
	"strings"
)

// StackState represents the aggregate lifecycle state of the VoxNovel
// compose stack. It is derived from the states of the individual
// containers belonging to the compose project:
//
//	absent → (deploy) → running ⇄ stopped
//	running → partial (some containers exited unexpectedly)
type StackState string

const (
	// StackRunning indicates every container in the stack is running.
	StackRunning StackState = "running"

	// StackPartial indicates some, but not all, containers are running.
	// This usually means a service crashed after startup.
	StackPartial StackState = "partial"

	// StackStopped indicates containers exist but none are running.
	StackStopped StackState = "stopped"

	// StackAbsent indicates no containers belonging to the compose
	// project exist on the host.
	StackAbsent StackState = "absent"
)

// String returns the string representation of StackState.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s StackState) String() string {
	return string(s)
}

// IsValid checks whether the StackState value is one of the
// predefined valid states.
func (s StackState) IsValid() bool {
	switch s {
	case StackRunning, StackPartial, StackStopped, StackAbsent:
		return true
	default:
		return false
	}
}

// ParseStackState converts a string to a StackState.
// Returns an error if the string does not match any valid state.
func ParseStackState(s string) (StackState, error) {
	state := StackState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid stack state: %q (valid: running, partial, stopped, absent)", s)
	}
	return state, nil
}

// DeriveStackState computes the aggregate stack state from a set of
// container runtime states (the short Docker State strings such as
// "running", "exited", "created").
//
// An empty slice means no containers exist for the project → absent.
func DeriveStackState(containerStates []string) StackState {
	if len(containerStates) == 0 {
		return StackAbsent
	}

	running := 0
	for _, s := range containerStates {
		if s == "running" {
			running++
		}
	}

	switch {
	case running == len(containerStates):
		return StackRunning
	case running > 0:
		return StackPartial
	default:
		return StackStopped
	}
}

// CheckStatus is the outcome of a single preflight check.
type CheckStatus string

const (
	// CheckOK means the requirement is satisfied and nothing was changed.
	CheckOK CheckStatus = "ok"

	// CheckInstalled means the requirement was missing and has been
	// installed during this run.
	CheckInstalled CheckStatus = "installed"

	// CheckMissing means the requirement is missing and was not installed
	// (either installation is disabled or it failed).
	CheckMissing CheckStatus = "missing"

	// CheckSkipped means the check does not apply on this host
	// (e.g., NVIDIA checks on a host without a GPU).
	CheckSkipped CheckStatus = "skipped"
)

// String returns the string representation of CheckStatus.
func (s CheckStatus) String() string {
	return string(s)
}

// CheckResult records the outcome of one preflight check, for both
// human-readable reporting and JSON output.
type CheckResult struct {
	// Name identifies the requirement, e.g. "docker", "compose-plugin",
	// "nvidia-toolkit".
	Name string `json:"name"`

	// Status is the check outcome.
	Status CheckStatus `json:"status"`

	// Detail is an optional human-readable explanation: the resolved
	// binary path, a version string, or the reason a check was skipped.
	Detail string `json:"detail,omitempty"`
}

// Satisfied reports whether the requirement is usable after the check,
// i.e. it was already present or has just been installed. Skipped checks
// count as satisfied because they do not apply to this host.
func (r CheckResult) Satisfied() bool {
	return r.Status == CheckOK || r.Status == CheckInstalled || r.Status == CheckSkipped
}

// ServiceContainer holds runtime information about one Docker container
// belonging to the compose stack. This data is fetched dynamically from
// the Docker API, not persisted.
type ServiceContainer struct {
	// ID is the Docker container identifier (SHA-256 hash prefix).
	ID string `json:"id"`

	// Name is the human-readable Docker container name.
	Name string `json:"name"`

	// Service is the Docker Compose service name, taken from the
	// "com.docker.compose.service" label.
	Service string `json:"service"`

	// State is the short Docker container state (e.g., "running", "exited").
	State string `json:"state"`

	// Status is the longer Docker status line (e.g., "Up 3 minutes").
	Status string `json:"status,omitempty"`
}

// ErrorKind classifies where in the deployment pipeline an error
// originated. The CLI prints the kind in JSON error output so operators
// and scripts can tell a preflight failure from a readiness failure,
// but every kind still maps to process exit code 1 — the original
// deployment contract is binary (0 succeeded, 1 failed).
type ErrorKind string

const (
	// KindUsage covers invalid invocation: bad flags, wrong directory,
	// missing compose file, non-root execution.
	KindUsage ErrorKind = "usage"

	// KindPreflight covers failed tooling checks or installations.
	KindPreflight ErrorKind = "preflight"

	// KindWorkspace covers data directory creation failures.
	KindWorkspace ErrorKind = "workspace"

	// KindDocker covers Docker daemon connectivity problems.
	KindDocker ErrorKind = "docker"

	// KindCompose covers docker compose build/up/down failures.
	KindCompose ErrorKind = "compose"

	// KindReadiness covers a stack that failed to become ready in time.
	KindReadiness ErrorKind = "readiness"

	// KindGPU covers GPU passthrough verification problems. GPU errors
	// are reported as warnings by the deploy pipeline, never as fatal
	// failures; the kind exists for the standalone gpu-test command.
	KindGPU ErrorKind = "gpu"
)

// DeployError is a custom error type that carries an ErrorKind.
// This lets the CLI layer report where a failure originated without
// multiplexing exit codes: all fatal errors exit 1.
type DeployError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *DeployError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *DeployError) Unwrap() error {
	return e.Err
}

// NewDeployError creates a new DeployError with the given kind and message.
func NewDeployError(kind ErrorKind, message string) *DeployError {
	return &DeployError{Kind: kind, Message: message}
}

// WrapDeployError creates a new DeployError that wraps an existing error.
func WrapDeployError(kind ErrorKind, message string, err error) *DeployError {
	return &DeployError{Kind: kind, Message: message, Err: err}
}
