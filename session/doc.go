// Package session drives a long-lived streaming-client session through an
// external library that only makes progress when it is polled.
//
// The library reports asynchronous results (login, logout, connection loss,
// metadata changes, log lines) through Callbacks that may run on a goroutine
// of its own. The Driver turns those callbacks into a write-once Outcome and a
// wake signal, and runs the poll loop:
//
//	for outcome is unset {
//	    next := handle.ProcessEvents()
//	    wait for a wake, at most next
//	    maybe request a logout (LogoutPolicy)
//	}
//
// # Basic Usage
//
//	lib, err := session.Open("sim", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := session.New(lib,
//	    session.WithApplicationKey(key),
//	    session.WithLogoutPolicy(session.LogoutAfter(15)),
//	    session.WithStdout(os.Stdout),
//	)
//
//	status, err := d.Run(ctx, username, password)
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "%v\n", err)
//	}
//	os.Exit(status.ExitCode())
//
// # Session Lifecycle
//
// A Driver moves through the following phases:
//   - PhaseConnecting: session created, login requested
//   - PhaseAuthenticated: the library accepted the credentials
//   - PhaseReady: the user identity was read and the banner printed
//   - PhaseTerminating: a terminal event arrived or a logout was requested
//   - PhaseTerminated: the loop exited and the handle was released
//
// # Exit Status
//
// The first terminal event wins. A connection error followed by a logout
// still resolves to StatusNetworkFailed. Setup failures resolve to
// StatusConfigRejected or StatusLoginRejected without entering the loop.
//
// # Thread Safety
//
// Callbacks may run concurrently with the loop. A Driver must be run by a
// single goroutine; its accessors (Phase, Status, Iterations) are safe to
// call from any goroutine.
package session
