// Package simsession is an in-process session library that implements the
// session.Library contract without a network.
//
// It behaves like a real client library from the driver's point of view:
// login and logout complete asynchronously on a worker goroutine, results are
// queued and announced with NotifyMainThread, and every callback runs inside
// ProcessEvents on the caller's goroutine.
//
// # Basic Usage
//
//	lib := simsession.NewLibrary(
//	    simsession.WithAccount("ada", "lovelace", "Ada Lovelace"),
//	    simsession.WithLatency(20*time.Millisecond),
//	)
//	drv := session.New(lib, session.WithApplicationKey(key))
//	status, err := drv.Run(ctx, "ada", "lovelace")
//
// # Registry
//
// Importing the package registers it under the name "sim":
//
//	import _ "github.com/randalmurphal/streamkit/simsession"
//
//	lib, err := session.Open("sim", session.LibraryOptions{
//	    "latency": "25ms",
//	    "accounts": map[string]any{
//	        "ada": map[string]any{"password": "lovelace", "display_name": "Ada Lovelace"},
//	    },
//	})
//
// Recognized options: latency, poll_interval, drop_connection_after,
// watch_settings (bool), watch_polling (bool), logger (*slog.Logger) and
// accounts (username to password, display_name and banned). Durations are
// strings such as "25ms" or whole numbers of milliseconds.
//
// # Fault Injection
//
// WithDropConnectionAfter reports a connection error a fixed time after a
// successful login. Unknown users and wrong passwords fail authentication
// through the LoggedIn callback, not through Login's return value.
//
// # Settings Watcher
//
// When enabled, writes under the settings location queue a MetadataUpdated
// callback. fsnotify is used where available, with a polling fallback;
// WithPollingWatcher selects polling outright.
package simsession
