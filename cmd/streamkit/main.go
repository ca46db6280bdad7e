// Command streamkit logs a user into a streaming session, keeps the session
// alive until it ends, and exits with a code describing how it ended.
//
// Usage:
//
//	streamkit [flags] <username> <password>
//
// Exit codes:
//
//	0  logged out cleanly
//	1  usage error
//	2  configuration rejected (config file, application key, library setup)
//	3  login request rejected
//	4  authentication failed
//	5  connection failed
//	6  logout request failed
//
// SIGINT and SIGTERM request a graceful logout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/streamkit/appkey"
	"github.com/randalmurphal/streamkit/config"
	"github.com/randalmurphal/streamkit/session"
	_ "github.com/randalmurphal/streamkit/simsession"
)

const (
	exitUsage          = int(session.StatusUsage)
	exitConfigRejected = int(session.StatusConfigRejected)
)

func main() {
	ctx, stop := signalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// signalContext returns a context cancelled by the first SIGINT or SIGTERM.
// Once cancelled, the signals get default handling again, so a second one
// terminates a run still waiting for the library to confirm its logout.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// exitError carries a process exit code out of the command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type cliOptions struct {
	configPath  string
	logLevel    string
	logoutAfter int
	appKeyPath  string
	printSchema bool
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "streamkit: %v\n", exitErr.err)
		return exitErr.code
	}

	// Anything else came from argument or flag parsing.
	fmt.Fprintf(stderr, "streamkit: %v\n", err)
	fmt.Fprint(stderr, cmd.UsageString())
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts cliOptions

	cmd := &cobra.Command{
		Use:   "streamkit [flags] <username> <password>",
		Short: "Log in to a streaming session and run it until logout",
		Long: `streamkit creates a session with the configured library, logs in,
prints "Logged in as user <name>" once the session is ready and keeps the
session alive until it logs out, fails or is interrupted.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if opts.printSchema {
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <username> <password>, got %d argument(s)", len(args))
			}
			if strings.HasPrefix(args[0], "-") {
				return fmt.Errorf("invalid username %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.printSchema {
				return printSchema(stdout)
			}
			return runSession(cmd, &opts, args[0], args[1], stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVar(&opts.logoutAfter, "logout-after", 0, "request logout after N loop iterations (0 disables)")
	flags.StringVar(&opts.appKeyPath, "appkey", "", "application key file (default "+appkey.DefaultPath()+")")
	flags.BoolVar(&opts.printSchema, "print-config-schema", false, "print the config file JSON schema and exit")

	return cmd
}

func printSchema(w io.Writer) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return &exitError{code: exitConfigRejected, err: err}
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// loadConfig resolves the config file, environment and flags in that order.
func loadConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("logout-after") {
		cfg.Logout.AfterIterations = opts.logoutAfter
	}
	if flags.Changed("appkey") {
		cfg.Session.AppKeyPath = opts.appKeyPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSession(cmd *cobra.Command, opts *cliOptions, username, password string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return &exitError{code: exitConfigRejected, err: err}
	}
	logger := cfg.Log.NewLogger(stderr)

	key, err := appkey.Load(cfg.Session.AppKeyPath)
	if err != nil {
		return &exitError{code: exitConfigRejected, err: err}
	}

	libOpts := session.LibraryOptions{"logger": logger}
	for k, v := range cfg.Library.Options {
		libOpts[k] = v
	}
	lib, err := session.Open(cfg.Library.Name, libOpts)
	if err != nil {
		return &exitError{code: exitConfigRejected, err: err}
	}

	drv := session.New(lib,
		session.WithCacheLocation(cfg.Session.CacheLocation),
		session.WithSettingsLocation(cfg.Session.SettingsLocation),
		session.WithApplicationKey(key),
		session.WithUserAgent(cfg.Session.UserAgent),
		session.WithDefaultPollInterval(cfg.Poll.Default),
		session.WithMaxPollInterval(cfg.Poll.Max),
		session.WithLogoutPolicy(session.LogoutAfter(cfg.Logout.AfterIterations)),
		session.WithLogger(logger),
		session.WithStdout(stdout),
	)

	logger.Debug("starting session",
		slog.String("session_id", drv.ID()),
		slog.String("library", cfg.Library.Name),
		slog.String("appkey", key.Fingerprint()),
		slog.Int("logout_after", cfg.Logout.AfterIterations))

	status, err := drv.Run(cmd.Context(), username, password)
	if err != nil {
		return &exitError{code: status.ExitCode(), err: err}
	}
	return nil
}
