package simsession

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/randalmurphal/streamkit/appkey"
	"github.com/randalmurphal/streamkit/session"
)

// Name is the registry name of the simulated library.
const Name = "sim"

const (
	defaultLatency      = 50 * time.Millisecond
	defaultPollInterval = 100 * time.Millisecond
	maxUserAgentLength  = 255
)

func init() {
	session.Register(Name, func(opts session.LibraryOptions) (session.Library, error) {
		libOpts, err := optionsFrom(opts)
		if err != nil {
			return nil, err
		}
		return NewLibrary(libOpts...), nil
	})
}

// Account is a user the simulated backend accepts.
type Account struct {
	Password    string
	DisplayName string
	Banned      bool
}

// Library creates simulated sessions. It is safe to create several sessions
// from one Library.
type Library struct {
	mu            sync.RWMutex
	accounts      map[string]Account
	latency       time.Duration
	pollInterval  time.Duration
	dropAfter     time.Duration
	watchSettings bool
	forcePolling  bool
	logger        *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithAccount adds an account to the backend.
func WithAccount(username, password, displayName string) Option {
	return func(l *Library) {
		l.accounts[username] = Account{Password: password, DisplayName: displayName}
	}
}

// WithAccounts adds every account in accounts.
func WithAccounts(accounts map[string]Account) Option {
	return func(l *Library) {
		for name, acct := range accounts {
			l.accounts[name] = acct
		}
	}
}

// WithLatency sets how long each backend request takes.
func WithLatency(d time.Duration) Option {
	return func(l *Library) {
		if d >= 0 {
			l.latency = d
		}
	}
}

// WithPollInterval sets the interval ProcessEvents requests while work is
// outstanding.
func WithPollInterval(d time.Duration) Option {
	return func(l *Library) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithDropConnectionAfter makes every session report a connection error d
// after a successful login. Zero disables it.
func WithDropConnectionAfter(d time.Duration) Option {
	return func(l *Library) {
		l.dropAfter = d
	}
}

// WithSettingsWatcher enables or disables watching the settings location.
func WithSettingsWatcher(enabled bool) Option {
	return func(l *Library) {
		l.watchSettings = enabled
	}
}

// WithPollingWatcher makes the settings watcher poll modification times
// instead of using fsnotify. It has no effect unless the watcher is enabled.
func WithPollingWatcher(enabled bool) Option {
	return func(l *Library) {
		l.forcePolling = enabled
	}
}

// WithLogger sets the logger used for library diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLibrary creates a simulated library.
func NewLibrary(opts ...Option) *Library {
	l := &Library{
		accounts:     make(map[string]Account),
		latency:      defaultLatency,
		pollInterval: defaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddAccount registers an account after construction.
func (l *Library) AddAccount(username string, acct Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[username] = acct
}

func (l *Library) account(username string) (Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acct, ok := l.accounts[username]
	return acct, ok
}

// Create validates cfg and starts a session. The session's worker runs until
// Release.
func (l *Library) Create(cfg session.Config, cb session.Callbacks) (session.Handle, error) {
	if err := validate(cfg, cb); err != nil {
		return nil, err
	}

	if l.watchSettings {
		if err := os.MkdirAll(cfg.SettingsLocation, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSettings, err)
		}
	}

	h := newHandle(l, cfg, cb)
	if l.watchSettings {
		h.startWatcher()
	}
	return h, nil
}

func validate(cfg session.Config, cb session.Callbacks) error {
	if cb.NotifyMainThread == nil || cb.LoggedIn == nil || cb.LoggedOut == nil {
		return ErrMissingCallback
	}
	if len(cfg.ApplicationKey) != appkey.Size {
		return ErrBadApplicationKey
	}
	if n := utf8.RuneCountInString(cfg.UserAgent); n == 0 || n > maxUserAgentLength {
		return ErrBadUserAgent
	}
	if cfg.CacheLocation == "" {
		return ErrNoCache
	}
	if cfg.SettingsLocation == "" {
		return ErrNoSettings
	}
	return nil
}

// optionsFrom converts registry options into Library options.
func optionsFrom(opts session.LibraryOptions) ([]Option, error) {
	libOpts := []Option{
		WithLatency(opts.GetDuration("latency", defaultLatency)),
		WithPollInterval(opts.GetDuration("poll_interval", defaultPollInterval)),
		WithDropConnectionAfter(opts.GetDuration("drop_connection_after", 0)),
		WithSettingsWatcher(opts.GetBool("watch_settings", false)),
		WithPollingWatcher(opts.GetBool("watch_polling", false)),
	}
	if logger, ok := opts["logger"].(*slog.Logger); ok {
		libOpts = append(libOpts, WithLogger(logger))
	}

	for name, raw := range opts.GetMap("accounts") {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sim: account %q: expected a map, got %T", name, raw)
		}
		acct := session.LibraryOptions(fields)
		libOpts = append(libOpts, WithAccounts(map[string]Account{
			name: {
				Password:    acct.GetString("password", ""),
				DisplayName: acct.GetString("display_name", ""),
				Banned:      acct.GetBool("banned", false),
			},
		}))
	}
	return libOpts, nil
}
