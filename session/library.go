package session

import "time"

// NoPreference is returned by Handle.ProcessEvents when the library has no
// opinion on when it next needs to be polled.
const NoPreference time.Duration = -1

// Config is handed to Library.Create.
type Config struct {
	// CacheLocation is the directory the library keeps its cache in. Required.
	CacheLocation string

	// SettingsLocation is the directory the library keeps its settings in. Required.
	SettingsLocation string

	// ApplicationKey is the opaque credential identifying this application.
	ApplicationKey []byte

	// UserAgent identifies the application, 1 to 255 characters.
	UserAgent string
}

// Callbacks is the set of handlers a library invokes to report asynchronous
// events. The library serializes its calls, but they may arrive on any
// goroutine, including while the owner is inside a Handle method.
//
// Libraries may refuse a Callbacks value missing the handlers they need;
// other nil fields are skipped.
type Callbacks struct {
	// LoggedIn reports the result of a Login request. err is nil on success.
	LoggedIn func(err error)

	// LoggedOut reports that the session has logged out. Terminal.
	LoggedOut func()

	// MetadataUpdated reports that cached metadata changed.
	MetadataUpdated func()

	// ConnectionError reports a lost or failed connection.
	ConnectionError func(err error)

	// NotifyMainThread asks the owner to call ProcessEvents soon.
	NotifyMainThread func()

	// LogMessage carries a diagnostic line from the library.
	LogMessage func(text string)
}

// User is the identity of the logged-in account as seen by the library.
type User struct {
	// Loaded is true once the display name has been fetched.
	Loaded bool

	// DisplayName is the human-readable name. Valid only when Loaded.
	DisplayName string

	// CanonicalName is the account identifier. Always valid after login.
	CanonicalName string
}

// Name returns the display name when loaded and the canonical name otherwise.
func (u User) Name() string {
	if u.Loaded && u.DisplayName != "" {
		return u.DisplayName
	}
	return u.CanonicalName
}

// Library creates sessions.
type Library interface {
	// Create validates cfg and returns a handle that will report events
	// through cb.
	Create(cfg Config, cb Callbacks) (Handle, error)
}

// Handle is one session created by a Library. It is owned by a single
// goroutine; none of its methods may be called from inside a callback.
type Handle interface {
	// Login starts asynchronous authentication. The result arrives via
	// Callbacks.LoggedIn. A non-nil error means the request was refused.
	Login(username, password string) error

	// Logout starts asynchronous logout. Completion arrives via
	// Callbacks.LoggedOut.
	Logout() error

	// ProcessEvents runs pending work, dispatching callbacks, and returns
	// how long the caller may wait before calling it again.
	ProcessEvents() time.Duration

	// CurrentUser returns the logged-in user.
	CurrentUser() User

	// Release frees the session. The handle must not be used afterwards.
	Release() error
}
