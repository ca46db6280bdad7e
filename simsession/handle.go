package simsession

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/streamkit/session"
)

type state int

const (
	stateIdle state = iota
	stateLoggingIn
	stateLoggedIn
	stateLoggingOut
	stateLoggedOut
	stateReleased
)

// jobQueueSize bounds outstanding backend requests per session.
const jobQueueSize = 16

// handle is one simulated session. Backend work runs on the worker goroutine;
// callbacks run only inside ProcessEvents.
type handle struct {
	lib    *Library
	cfg    session.Config
	cb     session.Callbacks
	logger *slog.Logger

	mu        sync.Mutex
	state     state
	user      session.User
	queue     []func()
	pending   int
	dropTimer *time.Timer

	jobs        chan func()
	done        chan struct{}
	wg          sync.WaitGroup
	watcher     *settingsWatcher
	releaseOnce sync.Once
}

func newHandle(l *Library, cfg session.Config, cb session.Callbacks) *handle {
	h := &handle{
		lib:    l,
		cfg:    cfg,
		cb:     cb,
		logger: l.logger.With(slog.String("library", Name)),
		jobs:   make(chan func(), jobQueueSize),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.work()
	return h
}

func (h *handle) work() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case job := <-h.jobs:
			if !h.sleep(h.lib.latency) {
				return
			}
			job()
		}
	}
}

// sleep waits d or until the session is released. It reports whether the
// full wait elapsed.
func (h *handle) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-h.done:
		return false
	case <-t.C:
		return true
	}
}

// submitLocked hands job to the worker. Caller holds mu.
func (h *handle) submitLocked(job func()) error {
	select {
	case h.jobs <- job:
		h.pending++
		return nil
	default:
		return ErrUnableToContactServer
	}
}

// finishLocked queues events from a completed job. Caller holds mu and must
// call notify after unlocking when it returns true.
func (h *handle) finishLocked(events ...func()) bool {
	if h.state == stateReleased {
		return false
	}
	h.queue = append(h.queue, events...)
	return true
}

func (h *handle) notify() {
	h.cb.NotifyMainThread()
}

// Login starts an asynchronous login. The result arrives as a LoggedIn
// callback.
func (h *handle) Login(username, password string) error {
	if username == "" {
		return ErrInvalidIndata
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case stateReleased:
		return ErrReleased
	case stateLoggingIn, stateLoggedIn, stateLoggingOut:
		return ErrAlreadyLoggedIn
	}

	if err := h.submitLocked(func() { h.authenticate(username, password) }); err != nil {
		return err
	}
	h.state = stateLoggingIn
	h.logger.Debug("login requested", slog.String("username", username))
	return nil
}

func (h *handle) authenticate(username, password string) {
	acct, ok := h.lib.account(username)
	var authErr error
	switch {
	case !ok || acct.Password != password:
		authErr = ErrBadUsernameOrPassword
	case acct.Banned:
		authErr = ErrUserBanned
	}

	h.mu.Lock()
	h.pending--
	// A logout requested while the login was in flight wins.
	if h.state != stateLoggingIn {
		h.mu.Unlock()
		return
	}

	var queued bool
	if authErr != nil {
		h.state = stateIdle
		queued = h.finishLocked(
			h.logEvent(fmt.Sprintf("login failed for %s: %v", username, authErr)),
			func() { h.cb.LoggedIn(authErr) },
		)
	} else {
		h.state = stateLoggedIn
		h.user = session.User{CanonicalName: username}
		queued = h.finishLocked(
			h.logEvent("logged in as "+username),
			func() { h.cb.LoggedIn(nil) },
		)
		if err := h.submitLocked(func() { h.loadUser(acct.DisplayName) }); err != nil {
			h.logger.Warn("user metadata not loaded", slog.Any("error", err))
		}
		if h.lib.dropAfter > 0 {
			h.dropTimer = time.AfterFunc(h.lib.dropAfter, h.dropConnection)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("login completed", slog.String("username", username), slog.Any("error", authErr))
	if queued {
		h.notify()
	}
}

// loadUser completes the user record one request after login.
func (h *handle) loadUser(displayName string) {
	h.mu.Lock()
	h.pending--
	if h.state != stateLoggedIn {
		h.mu.Unlock()
		return
	}
	h.user.Loaded = true
	h.user.DisplayName = displayName
	queued := h.finishLocked(h.metadataEvent())
	h.mu.Unlock()

	if queued {
		h.notify()
	}
}

// Logout starts an asynchronous logout. It is accepted while a login is in
// flight or active; the result arrives as a LoggedOut callback.
func (h *handle) Logout() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case stateReleased:
		return ErrReleased
	case stateLoggingIn, stateLoggedIn:
	default:
		return ErrNotLoggedIn
	}

	if err := h.submitLocked(h.completeLogout); err != nil {
		return err
	}
	h.state = stateLoggingOut
	h.stopDropLocked()
	h.logger.Debug("logout requested")
	return nil
}

func (h *handle) completeLogout() {
	h.mu.Lock()
	h.pending--
	if h.state != stateLoggingOut {
		h.mu.Unlock()
		return
	}
	h.state = stateLoggedOut
	h.user = session.User{}
	queued := h.finishLocked(
		h.logEvent("logged out"),
		func() { h.cb.LoggedOut() },
	)
	h.mu.Unlock()

	if queued {
		h.notify()
	}
}

// dropConnection runs on a timer goroutine after a successful login.
func (h *handle) dropConnection() {
	h.mu.Lock()
	if h.state != stateLoggedIn {
		h.mu.Unlock()
		return
	}
	h.dropTimer = nil
	queued := h.finishLocked(
		h.logEvent("connection to access point lost"),
		func() {
			if h.cb.ConnectionError != nil {
				h.cb.ConnectionError(ErrUnableToContactServer)
			}
		},
	)
	h.mu.Unlock()

	h.logger.Debug("connection dropped")
	if queued {
		h.notify()
	}
}

func (h *handle) stopDropLocked() {
	if h.dropTimer != nil {
		h.dropTimer.Stop()
		h.dropTimer = nil
	}
}

// settingsChanged runs on the watcher goroutine.
func (h *handle) settingsChanged(path string) {
	h.mu.Lock()
	queued := h.finishLocked(
		h.logEvent("settings changed: "+path),
		h.metadataEvent(),
	)
	h.mu.Unlock()

	if queued {
		h.notify()
	}
}

func (h *handle) logEvent(msg string) func() {
	return func() {
		if h.cb.LogMessage != nil {
			h.cb.LogMessage(msg)
		}
	}
}

func (h *handle) metadataEvent() func() {
	return func() {
		if h.cb.MetadataUpdated != nil {
			h.cb.MetadataUpdated()
		}
	}
}

// ProcessEvents dispatches queued callbacks in order on the caller's
// goroutine and returns when it wants to be called again.
func (h *handle) ProcessEvents() time.Duration {
	h.mu.Lock()
	events := h.queue
	h.queue = nil
	busy := h.pending > 0
	h.mu.Unlock()

	for _, ev := range events {
		ev()
	}

	if busy {
		return h.lib.pollInterval
	}
	return session.NoPreference
}

// CurrentUser returns the logged in user. Until metadata loads the user is
// not Loaded and only the canonical name is set.
func (h *handle) CurrentUser() session.User {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user
}

// Release stops the worker and the settings watcher. Pending callbacks are
// dropped. Safe to call more than once.
func (h *handle) Release() error {
	var err error
	h.releaseOnce.Do(func() {
		h.mu.Lock()
		h.state = stateReleased
		h.queue = nil
		h.pending = 0
		h.stopDropLocked()
		h.mu.Unlock()

		close(h.done)
		h.wg.Wait()

		if h.watcher != nil {
			err = h.watcher.Close()
		}
		h.logger.Debug("session released")
	})
	return err
}
