package session

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a Driver.
type Option func(*driverConfig)

// driverConfig holds driver configuration.
type driverConfig struct {
	// Library configuration
	cacheLocation    string
	settingsLocation string
	applicationKey   []byte
	userAgent        string

	// Loop behavior
	defaultPoll time.Duration
	maxPoll     time.Duration
	policy      LogoutPolicy

	// Collaborators
	observer Observer
	logger   *slog.Logger
	stdout   io.Writer

	sessionID string
}

// defaultDriverConfig returns the default driver configuration.
func defaultDriverConfig() driverConfig {
	return driverConfig{
		cacheLocation:    "tmp",
		settingsLocation: "tmp",
		userAgent:        "streamkit",
		defaultPoll:      time.Second,
		maxPoll:          30 * time.Second,
		policy:           NeverLogout(),
		observer:         NopObserver{},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdout:           io.Discard,
	}
}

// WithCacheLocation sets the library cache directory.
func WithCacheLocation(dir string) Option {
	return func(c *driverConfig) { c.cacheLocation = dir }
}

// WithSettingsLocation sets the library settings directory.
func WithSettingsLocation(dir string) Option {
	return func(c *driverConfig) { c.settingsLocation = dir }
}

// WithApplicationKey sets the application credential passed to the library.
func WithApplicationKey(key []byte) Option {
	return func(c *driverConfig) { c.applicationKey = key }
}

// WithUserAgent sets the user agent string passed to the library.
func WithUserAgent(ua string) Option {
	return func(c *driverConfig) { c.userAgent = ua }
}

// WithDefaultPollInterval sets how long the loop waits when the library
// returns NoPreference.
func WithDefaultPollInterval(d time.Duration) Option {
	return func(c *driverConfig) { c.defaultPoll = d }
}

// WithMaxPollInterval caps the interval requested by the library.
// 0 disables the cap.
func WithMaxPollInterval(d time.Duration) Option {
	return func(c *driverConfig) { c.maxPoll = d }
}

// WithLogoutPolicy sets the policy that may request a logout on its own.
// A nil policy means NeverLogout.
func WithLogoutPolicy(p LogoutPolicy) Option {
	return func(c *driverConfig) {
		if p == nil {
			p = NeverLogout()
		}
		c.policy = p
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *driverConfig) {
		if o == nil {
			o = NopObserver{}
		}
		c.observer = o
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *driverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStdout sets where the login banner is written.
func WithStdout(w io.Writer) Option {
	return func(c *driverConfig) { c.stdout = w }
}

// WithSessionID sets the identifier attached to every log line.
// If not set, a random UUID is used.
func WithSessionID(id string) Option {
	return func(c *driverConfig) { c.sessionID = id }
}
