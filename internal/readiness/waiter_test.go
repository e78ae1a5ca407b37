package readiness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// newFakeClockWaiter builds a Waiter over a simulated clock: sleep
// advances the clock instead of blocking, so timeout behavior is
// testable in microseconds.
func newFakeClockWaiter(poll PollFunc, interval, timeout time.Duration) *Waiter {
	w := NewWaiter(poll, interval, timeout)

	now := time.Unix(1700000000, 0)
	w.now = func() time.Time { return now }
	w.sleep = func(_ context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	return w
}

// statesPoll returns a PollFunc that serves the given states in order,
// repeating the last one once exhausted.
func statesPoll(states ...model.StackState) PollFunc {
	i := 0
	return func(context.Context) (model.StackState, []model.ServiceContainer, error) {
		s := states[len(states)-1]
		if i < len(states) {
			s = states[i]
			i++
		}
		containers := []model.ServiceContainer{{Name: "voxnovel-web", Service: "voxnovel", State: "running"}}
		return s, containers, nil
	}
}

// TestWait_ImmediatelyReady verifies a stack that is already running
// returns without sleeping.
func TestWait_ImmediatelyReady(t *testing.T) {
	slept := false
	w := newFakeClockWaiter(statesPoll(model.StackRunning), 2*time.Second, 30*time.Second)
	inner := w.sleep
	w.sleep = func(ctx context.Context, d time.Duration) error {
		slept = true
		return inner(ctx, d)
	}

	report, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StackRunning, report.State)
	assert.False(t, slept, "should not sleep when already ready")
}

// TestWait_BecomesReady verifies polling continues through partial
// states until the stack is up.
func TestWait_BecomesReady(t *testing.T) {
	w := newFakeClockWaiter(
		statesPoll(model.StackAbsent, model.StackPartial, model.StackPartial, model.StackRunning),
		2*time.Second, 30*time.Second)

	report, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StackRunning, report.State)
	assert.Equal(t, 6*time.Second, report.Elapsed)
}

// TestWait_Timeout verifies the strict failure contract: no Up container
// by the deadline → an error, never a success claim.
func TestWait_Timeout(t *testing.T) {
	w := newFakeClockWaiter(statesPoll(model.StackStopped), 2*time.Second, 10*time.Second)

	report, err := w.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become ready")
	assert.Contains(t, err.Error(), "stopped")

	var de *model.DeployError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.KindReadiness, de.Kind)

	// The report is still returned so the CLI can show what the stack
	// looked like at the deadline.
	require.NotNil(t, report)
	assert.Equal(t, model.StackStopped, report.State)
}

// TestWait_PollError verifies a Docker API failure aborts the wait
// instead of spinning until the deadline.
func TestWait_PollError(t *testing.T) {
	pollErr := errors.New("daemon went away")
	w := newFakeClockWaiter(func(context.Context) (model.StackState, []model.ServiceContainer, error) {
		return "", nil, pollErr
	}, 2*time.Second, 30*time.Second)

	_, err := w.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pollErr)
}

// TestProbeHealth_Healthy verifies a 200 from the health endpoint marks
// the report healthy.
func TestProbeHealth_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	report := &Report{}
	ProbeHealth(context.Background(), report, srv.URL+"/health")

	assert.True(t, report.HealthOK)
	assert.Contains(t, report.HealthDetail, "responded 200")
}

// TestProbeHealth_ServerError verifies a 5xx keeps HealthOK false but
// records the status for the report.
func TestProbeHealth_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	report := &Report{}
	ProbeHealth(context.Background(), report, srv.URL+"/health")

	assert.False(t, report.HealthOK)
	assert.Contains(t, report.HealthDetail, "responded 502")
}

// TestProbeHealth_Unreachable verifies a connection failure degrades to
// a detail message, never a panic or fatal error.
func TestProbeHealth_Unreachable(t *testing.T) {
	report := &Report{}
	ProbeHealth(context.Background(), report, "http://127.0.0.1:1/health")

	assert.False(t, report.HealthOK)
	assert.Contains(t, report.HealthDetail, "health probe failed")
}

// TestHostIP returns something parseable — either a real interface
// address or the loopback fallback.
func TestHostIP(t *testing.T) {
	ip := HostIP()
	assert.NotEmpty(t, ip)
}
