package readiness

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// PollFunc reports the current stack state and its containers. The CLI
// wires this to docker.StackState; tests supply sequences of canned
// states.
type PollFunc func(ctx context.Context) (model.StackState, []model.ServiceContainer, error)

// Report is the outcome of a readiness wait.
type Report struct {
	// State is the final stack state observed.
	State model.StackState `json:"state"`

	// Containers are the stack containers at the final observation.
	Containers []model.ServiceContainer `json:"containers"`

	// Elapsed is how long the wait took.
	Elapsed time.Duration `json:"-"`

	// HealthOK records whether the HTTP health probe succeeded. False
	// when the probe was skipped or failed; see HealthDetail.
	HealthOK bool `json:"healthOk"`

	// HealthDetail explains the health probe outcome.
	HealthDetail string `json:"healthDetail,omitempty"`
}

// Waiter polls a stack until it is ready.
type Waiter struct {
	// Poll reports the stack state.
	Poll PollFunc

	// Interval is the delay between polls.
	Interval time.Duration

	// Timeout bounds the whole wait.
	Timeout time.Duration

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a Waiter with the given poll function and timing.
func NewWaiter(poll PollFunc, interval, timeout time.Duration) *Waiter {
	return &Waiter{
		Poll:     poll,
		Interval: interval,
		Timeout:  timeout,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait polls until every container in the stack is running, or the
// deadline passes. It returns the final report and, when the stack
// never became ready, a model.DeployError with KindReadiness describing
// the state it was left in.
//
// Partial and stopped states keep being polled until the deadline:
// compose starts services in dependency order, so a not-yet-running
// container early in the wait is normal.
func (w *Waiter) Wait(ctx context.Context) (*Report, error) {
	start := w.now()
	deadline := start.Add(w.Timeout)

	var (
		state      model.StackState
		containers []model.ServiceContainer
		err        error
	)

	for {
		state, containers, err = w.Poll(ctx)
		if err != nil {
			return nil, err
		}

		if state == model.StackRunning {
			return &Report{
				State:      state,
				Containers: containers,
				Elapsed:    w.now().Sub(start),
			}, nil
		}

		if !w.now().Add(w.Interval).Before(deadline) {
			break
		}
		if err := w.sleep(ctx, w.Interval); err != nil {
			return nil, err
		}
	}

	report := &Report{
		State:      state,
		Containers: containers,
		Elapsed:    w.now().Sub(start),
	}

	return report, model.NewDeployError(
		model.KindReadiness,
		fmt.Sprintf("stack did not become ready within %s (state: %s)", w.Timeout, state),
	)
}

// ProbeHealth performs a GET against the VoxNovel web server's health
// endpoint and fills the report's health fields. Any 2xx response
// counts as healthy.
//
// Probe failures never fail the deployment: nginx or the web app may
// legitimately take longer than the container runtime to warm up, and
// the original contract only requires containers to be up.
func ProbeHealth(ctx context.Context, report *Report, url string) {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		report.HealthDetail = fmt.Sprintf("invalid health URL %q: %v", url, err)
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		report.HealthDetail = fmt.Sprintf("health probe failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		report.HealthOK = true
		report.HealthDetail = fmt.Sprintf("%s responded %d", url, resp.StatusCode)
		return
	}

	report.HealthDetail = fmt.Sprintf("%s responded %d", url, resp.StatusCode)
}

// HostIP returns the host's primary outbound IPv4 address, used to print
// the LAN access URL. The UDP dial never sends a packet — it only makes
// the kernel pick the route and source address it would use.
func HostIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
