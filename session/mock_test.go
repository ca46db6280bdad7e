package session

import (
	"errors"
	"sync"
	"time"
)

// fakeLibrary implements Library for testing without a real backend.
type fakeLibrary struct {
	mu        sync.Mutex
	handle    *fakeHandle
	createErr error
	created   []Config
}

func newFakeLibrary(h *fakeHandle) *fakeLibrary {
	return &fakeLibrary{handle: h}
}

func (l *fakeLibrary) Create(cfg Config, cb Callbacks) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created = append(l.created, cfg)
	if l.createErr != nil {
		return nil, l.createErr
	}
	l.handle.setCallbacks(cb)
	return l.handle, nil
}

// fakeHandle implements Handle. Events queued with enqueue are dispatched
// from ProcessEvents, the way a real library dispatches on the polling
// goroutine; notifyLater simulates work finishing on a library goroutine.
type fakeHandle struct {
	mu       sync.Mutex
	cb       Callbacks
	queue    []func(Callbacks)
	user     User
	interval time.Duration

	loginErr   error
	logoutErr  error
	releaseErr error

	// onProcess runs at the start of every ProcessEvents call with the
	// 1-based call number.
	onProcess func(n int, h *fakeHandle)
	// onLogout runs after a successful Logout.
	onLogout func(h *fakeHandle)

	loginCalls   int
	logoutCalls  int
	processCalls int
	releaseCalls int
	userCalls    int

	loggedOut       bool
	usedAfterLogout bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		interval: 10 * time.Millisecond,
		user:     User{Loaded: true, DisplayName: "Test User", CanonicalName: "testuser"},
	}
}

func (h *fakeHandle) setCallbacks(cb Callbacks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cb = cb
}

// enqueue schedules fn to run inside the next ProcessEvents call.
func (h *fakeHandle) enqueue(fn func(Callbacks)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, fn)
}

// notifyLater enqueues fn after delay from a separate goroutine and wakes
// the main loop.
func (h *fakeHandle) notifyLater(delay time.Duration, fn func(Callbacks)) {
	go func() {
		time.Sleep(delay)
		h.enqueue(fn)
		h.mu.Lock()
		cb := h.cb
		h.mu.Unlock()
		cb.NotifyMainThread()
	}()
}

func (h *fakeHandle) touch() {
	if h.loggedOut {
		h.usedAfterLogout = true
	}
}

func (h *fakeHandle) Login(_, _ string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.touch()
	h.loginCalls++
	return h.loginErr
}

func (h *fakeHandle) Logout() error {
	h.mu.Lock()
	h.touch()
	h.logoutCalls++
	err := h.logoutErr
	onLogout := h.onLogout
	h.mu.Unlock()

	if err == nil && onLogout != nil {
		onLogout(h)
	}
	return err
}

func (h *fakeHandle) ProcessEvents() time.Duration {
	h.mu.Lock()
	h.touch()
	h.processCalls++
	n := h.processCalls
	onProcess := h.onProcess
	h.mu.Unlock()

	if onProcess != nil {
		onProcess(n, h)
	}

	h.mu.Lock()
	queue := h.queue
	h.queue = nil
	cb := h.cb
	interval := h.interval
	h.mu.Unlock()

	for _, fn := range queue {
		fn(cb)
	}
	return interval
}

func (h *fakeHandle) CurrentUser() User {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.touch()
	h.userCalls++
	return h.user
}

func (h *fakeHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseCalls++
	return h.releaseErr
}

// loggedOutCallback returns a queued event that fires LoggedOut and marks
// the handle as finished.
func loggedOutCallback(h *fakeHandle) func(Callbacks) {
	return func(cb Callbacks) {
		h.mu.Lock()
		h.loggedOut = true
		h.mu.Unlock()
		cb.LoggedOut()
	}
}

func (h *fakeHandle) counts() (process, logout, release int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.processCalls, h.logoutCalls, h.releaseCalls
}

// libError mimics a library error code with its own message table.
type libError string

func (e libError) Error() string { return string(e) }

var (
	errBadAppKey    = libError("invalid application key")
	errBadPassword  = libError("invalid username or password")
	errDisconnected = libError("unable to contact server")
	errNotLoggedIn  = libError("not logged in")
	errBusy         = errors.New("busy")
)
