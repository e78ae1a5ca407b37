package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseStackState verifies that valid state strings round-trip and
// that casing is normalized. Invalid strings must produce an error that
// names the offending value.
func TestParseStackState(t *testing.T) {
	tests := []struct {
		input   string
		want    StackState
		wantErr bool
	}{
		{"running", StackRunning, false},
		{"RUNNING", StackRunning, false},
		{"partial", StackPartial, false},
		{"stopped", StackStopped, false},
		{"absent", StackAbsent, false},
		{"", "", true},
		{"up", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStackState(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid stack state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDeriveStackState covers the aggregation rules: all running → running,
// mixed → partial, none running → stopped, no containers → absent.
func TestDeriveStackState(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   StackState
	}{
		{"no containers", nil, StackAbsent},
		{"empty slice", []string{}, StackAbsent},
		{"all running", []string{"running", "running"}, StackRunning},
		{"single running", []string{"running"}, StackRunning},
		{"mixed", []string{"running", "exited"}, StackPartial},
		{"all exited", []string{"exited", "exited"}, StackStopped},
		{"created only", []string{"created"}, StackStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStackState(tt.states))
		})
	}
}

// TestCheckResult_Satisfied verifies which check outcomes count as a
// satisfied requirement. Only "missing" leaves a requirement unmet —
// running the deploy twice must not re-install tools reported as "ok".
func TestCheckResult_Satisfied(t *testing.T) {
	assert.True(t, CheckResult{Name: "docker", Status: CheckOK}.Satisfied())
	assert.True(t, CheckResult{Name: "docker", Status: CheckInstalled}.Satisfied())
	assert.True(t, CheckResult{Name: "nvidia-toolkit", Status: CheckSkipped}.Satisfied())
	assert.False(t, CheckResult{Name: "compose-plugin", Status: CheckMissing}.Satisfied())
}

// TestDeployError_Error verifies message formatting with and without an
// underlying error.
func TestDeployError_Error(t *testing.T) {
	plain := NewDeployError(KindUsage, "compose file not found")
	assert.Equal(t, "compose file not found", plain.Error())

	underlying := errors.New("exit status 125")
	wrapped := WrapDeployError(KindCompose, "docker compose up failed", underlying)
	assert.Equal(t, "docker compose up failed: exit status 125", wrapped.Error())
}

// TestDeployError_Unwrap verifies errors.Is can see through DeployError
// to the wrapped cause.
func TestDeployError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDeployError(KindDocker, "daemon unreachable", cause)

	assert.True(t, errors.Is(err, cause))

	var de *DeployError
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &de))
	assert.Equal(t, KindDocker, de.Kind)
}
