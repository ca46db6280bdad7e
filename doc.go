// Package streamkit runs a single authenticated session against a streaming
// client library and reports how it ended.
//
// The module is split into small packages that can be used on their own:
//
//   - wake: one-slot wake signal that lets callbacks interrupt a timed wait
//   - session: the session driver, library contract, registry and exit status
//   - simsession: an in-process library implementing the session contract
//   - appkey: loading and storing the application key
//   - config: YAML/TOML configuration with environment overrides
//
// The streamkit command in cmd/streamkit wires them together.
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/streamkit/session"
//	    _ "github.com/randalmurphal/streamkit/simsession"
//	)
//
//	lib, _ := session.Open("sim", opts)
//	drv := session.New(lib,
//	    session.WithApplicationKey(key),
//	    session.WithLogoutPolicy(session.LogoutAfter(15)),
//	    session.WithStdout(os.Stdout),
//	)
//	status, err := drv.Run(ctx, username, password)
//	os.Exit(status.ExitCode())
//
// # Threading
//
// Library callbacks may arrive on any goroutine. They only record state and
// post the wake signal; every call into the library handle happens on the
// goroutine running Driver.Run.
package streamkit
