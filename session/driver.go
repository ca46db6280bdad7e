package session

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/streamkit/wake"
)

// Phase is the lifecycle position of a Driver. Phases only move forward.
type Phase string

// Phase constants, in order.
const (
	PhaseConnecting    Phase = "connecting"
	PhaseAuthenticated Phase = "authenticated"
	PhaseReady         Phase = "ready"
	PhaseTerminating   Phase = "terminating"
	PhaseTerminated    Phase = "terminated"
)

var phaseOrder = [...]Phase{
	PhaseConnecting,
	PhaseAuthenticated,
	PhaseReady,
	PhaseTerminating,
	PhaseTerminated,
}

// Driver owns one library session and runs its event loop until a terminal
// outcome is recorded. A Driver runs once.
type Driver struct {
	id     string
	lib    Library
	config driverConfig
	logger *slog.Logger

	signal  *wake.Signal
	outcome Outcome

	// Written by callbacks, read by the loop.
	phase         atomic.Int32
	authenticated atomic.Bool
	loggedOut     atomic.Bool

	// Written only by the loop.
	iterations      atomic.Int64
	ready           bool
	logoutRequested bool
}

// New creates a Driver that will open its session through lib.
func New(lib Library, opts ...Option) *Driver {
	cfg := defaultDriverConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := cfg.sessionID
	if id == "" {
		id = uuid.NewString()
	}

	return &Driver{
		id:     id,
		lib:    lib,
		config: cfg,
		logger: cfg.logger.With(slog.String("session_id", id)),
		signal: wake.New(),
	}
}

// ID returns the session identifier used in logs.
func (d *Driver) ID() string {
	return d.id
}

// Phase returns the current lifecycle phase.
func (d *Driver) Phase() Phase {
	return phaseOrder[d.phase.Load()]
}

// Status returns the recorded outcome, or StatusUnset while running.
func (d *Driver) Status() Status {
	return d.outcome.Status()
}

// Iterations returns how many loop passes have completed.
func (d *Driver) Iterations() int64 {
	return d.iterations.Load()
}

// Run creates the session, logs in and drives the event loop until the
// library reports a terminal event. It returns the resolved status and the
// error that caused it (nil on success).
//
// Cancelling ctx does not abort the loop; it requests a logout and the loop
// ends once the library confirms it.
func (d *Driver) Run(ctx context.Context, username, password string) (Status, error) {
	cfg := Config{
		CacheLocation:    d.config.cacheLocation,
		SettingsLocation: d.config.settingsLocation,
		ApplicationKey:   d.config.applicationKey,
		UserAgent:        d.config.userAgent,
	}

	d.logger.Debug("creating session",
		slog.String("cache_location", cfg.CacheLocation),
		slog.String("settings_location", cfg.SettingsLocation),
		slog.String("user_agent", cfg.UserAgent))

	handle, err := d.lib.Create(cfg, d.callbacks())
	if err != nil {
		return d.abort(StatusConfigRejected, NewError("create", StatusConfigRejected, err))
	}

	d.logger.Debug("requesting login", slog.String("username", username))
	if err := handle.Login(username, password); err != nil {
		d.release(handle)
		return d.abort(StatusLoginRejected, NewError("login", StatusLoginRejected, err))
	}

	d.loop(ctx, handle)

	status, cause := d.outcome.Load()
	d.advance(PhaseTerminated)
	d.logger.Debug("session terminated",
		slog.String("status", status.String()),
		slog.Int64("iterations", d.iterations.Load()))
	d.config.observer.SessionTerminated(status)
	d.release(handle)

	return status, cause
}

// abort records a setup failure. The loop is never entered.
func (d *Driver) abort(status Status, err error) (Status, error) {
	d.outcome.Set(status, err)
	d.advance(PhaseTerminated)
	d.logger.Debug("session setup failed", slog.Any("error", err))
	return d.outcome.Load()
}

// loop polls the handle until an outcome is recorded.
func (d *Driver) loop(ctx context.Context, h Handle) {
	for !d.outcome.IsSet() {
		next := d.pollInterval(h.ProcessEvents())
		d.logger.Debug("processed events", slog.Duration("next", next))

		// Woken and timed out are handled the same way: re-check state.
		if res := d.signal.WaitContext(ctx, next); res == wake.Cancelled {
			ctx = context.WithoutCancel(ctx)
			if !d.requestLogout(h, "context cancelled") {
				return
			}
		}

		d.maybeReady(h)

		n := d.iterations.Add(1)
		if d.config.policy.ShouldLogout(n) {
			if !d.requestLogout(h, fmt.Sprintf("iteration %d", n)) {
				return
			}
		}
	}
}

// pollInterval turns the library's request into a wait bound.
func (d *Driver) pollInterval(next time.Duration) time.Duration {
	if next < 0 {
		next = d.config.defaultPoll
	}
	if d.config.maxPoll > 0 && next > d.config.maxPoll {
		next = d.config.maxPoll
	}
	return next
}

// maybeReady completes the authenticated -> ready transition on the loop
// goroutine, where reading from the handle is allowed.
func (d *Driver) maybeReady(h Handle) {
	if d.ready || !d.authenticated.Load() || d.loggedOut.Load() {
		return
	}
	d.ready = true

	user := h.CurrentUser()
	fmt.Fprintf(d.config.stdout, "Logged in as user %s\n", user.Name())

	d.advance(PhaseReady)
	d.logger.Info("session ready",
		slog.String("user", user.Name()),
		slog.Bool("user_loaded", user.Loaded))
	d.config.observer.SessionReady(user)
}

// requestLogout asks the handle to log out, at most once per run. It returns
// false when the request failed and the loop must stop.
func (d *Driver) requestLogout(h Handle, reason string) bool {
	if d.logoutRequested || d.loggedOut.Load() {
		return true
	}
	d.logoutRequested = true
	d.advance(PhaseTerminating)

	d.logger.Debug("requesting logout", slog.String("reason", reason))
	if err := h.Logout(); err != nil {
		d.outcome.Set(StatusLogoutRequestFailed, NewError("logout", StatusLogoutRequestFailed, err))
		d.logger.Error("logout request failed", slog.Any("error", err))
		return false
	}
	return true
}

func (d *Driver) release(h Handle) {
	if err := h.Release(); err != nil {
		d.logger.Warn("failed to release session", slog.Any("error", err))
	}
}

// advance moves the phase forward to p. Moving backwards is ignored.
func (d *Driver) advance(p Phase) {
	target := int32(phaseIndex(p))
	for {
		cur := d.phase.Load()
		if cur >= target {
			return
		}
		if d.phase.CompareAndSwap(cur, target) {
			return
		}
	}
}

func phaseIndex(p Phase) int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return 0
}

// callbacks builds the handler table registered with the library. Handlers
// only touch atomic state and the wake signal; they never call the handle.
func (d *Driver) callbacks() Callbacks {
	return Callbacks{
		LoggedIn:         d.onLoggedIn,
		LoggedOut:        d.onLoggedOut,
		MetadataUpdated:  d.onMetadataUpdated,
		ConnectionError:  d.onConnectionError,
		NotifyMainThread: d.onNotifyMainThread,
		LogMessage:       d.onLogMessage,
	}
}

func (d *Driver) onConnectionError(err error) {
	d.logger.Error("connection failed", slog.Any("error", err))
	d.outcome.Set(StatusNetworkFailed, NewError("connection", StatusNetworkFailed, err))
	d.advance(PhaseTerminating)
	d.signal.Post()
}

func (d *Driver) onLoggedIn(err error) {
	if err != nil {
		d.logger.Error("authentication failed", slog.Any("error", err))
		d.outcome.Set(StatusAuthFailed, NewError("logged_in", StatusAuthFailed, err))
		d.advance(PhaseTerminating)
		d.signal.Post()
		return
	}

	d.logger.Debug("callback: logged in")
	d.authenticated.Store(true)
	d.advance(PhaseAuthenticated)
	d.signal.Post()
}

func (d *Driver) onLoggedOut() {
	d.logger.Debug("callback: logged out", slog.String("status", d.outcome.Status().String()))
	d.loggedOut.Store(true)
	d.outcome.Set(StatusSuccess, nil)
	d.advance(PhaseTerminating)
	d.signal.Post()
}

func (d *Driver) onNotifyMainThread() {
	d.signal.Post()
}

func (d *Driver) onLogMessage(text string) {
	d.logger.Info("library log", slog.String("source", "library"), slog.String("message", text))
}

func (d *Driver) onMetadataUpdated() {
	d.logger.Debug("callback: metadata updated")
	d.safeCall("metadata_updated", d.config.observer.MetadataUpdated)
}

// safeCall runs an observer hook from a callback and recovers from panics,
// since nothing may propagate back into the library.
func (d *Driver) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("observer panicked",
				slog.String("hook", name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}
