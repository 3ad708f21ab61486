// Package cli implements the ccadash command line: the dashboard server and terminal access to the CCA API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/session"
	"github.com/pasc-cca/ccadash/internal/version"
)

const skipProfile = "skip-profile"

var errNotSignedIn = errors.New("not signed in, run `ccadash login` first")

// app is the state shared by the commands of one invocation
type app struct {
	configPath string
	jsonOutput bool
	verbose    bool

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	profile *Profile
	logger  *slog.Logger
	out     *output
	store   *session.FileStore
	client  *client.Client

	// transport replaces the default transport in tests
	transport http.RoundTripper

	sessionExpired atomic.Bool
}

// NewRootCommand returns the ccadash command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccadash",
		Short: "CCA student dashboard",
		Long: `ccadash serves the CCA student dashboard and gives terminal access to the CCA API.

The CLI stores its session in a local file. Settings are read from an optional YAML file
(--config or CCADASH_CONFIG) and CCADASH_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipProfile] == "true" {
				return nil
			}
			return a.setup()
		},
	}

	cmd.Version = version.Get().String()

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	if a.stdin != nil {
		cmd.SetIn(a.stdin)
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (default $"+configFileEnv+")")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print the API response as JSON")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log API requests to stderr")

	cmd.AddCommand(
		newServeCommand(),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newDashboardCommand(a),
		newLeaderboardCommand(a),
		newEventsCommand(a),
		newRSVPCommand(a),
		newAttendCommand(a),
		newNotificationsCommand(a),
		newAnnouncementsCommand(a),
	)
	return cmd
}

// setup loads the profile and creates the API client bound to the session file
func (a *app) setup() error {
	profile, err := LoadProfile(a.configPath)
	if err != nil {
		return err
	}
	a.profile = profile

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:   level,
		NoColor: !useColor(a.stderr, profile.Color),
	}))
	a.out = newOutput(a.stdout, profile.Color)
	a.store = session.NewFileStore(profile.SessionFile, a.logger)

	opts := []client.Option{client.WithLogger(a.logger)}
	if a.transport != nil {
		opts = append(opts, client.WithTransport(a.transport))
	}
	a.client = client.New(client.Config{
		BaseURL:        profile.APIBaseURL,
		Timeout:        profile.APITimeout,
		StrictEnvelope: config.ErrorMode(profile.ErrorMode) == config.ErrorModeStrict,
	}, a.store, opts...)

	a.client.OnSessionInvalidated(func(ctx context.Context, ev client.SessionInvalidated) {
		a.sessionExpired.Store(true)
	})
	return nil
}

// context returns the command context tagged with the screen name used for session invalidation
func (a *app) context(cmd *cobra.Command) context.Context {
	return client.ContextWithScreen(cmd.Context(), "/cli/"+cmd.Name())
}

func (a *app) requireSession() error {
	if a.store.Token() == "" {
		return errNotSignedIn
	}
	return nil
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin}
	return execute(ctx, a, os.Args[1:])
}

func execute(ctx context.Context, a *app, args []string) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if a.sessionExpired.Load() {
		fmt.Fprintln(a.stderr, "Your session has expired. Run `ccadash login` to sign in again.")
		return 1
	}
	if err != nil {
		if a.logger != nil {
			a.logger.Debug("command failed", slog.String("error", err.Error()))
		}
		fmt.Fprintf(a.stderr, "Error: %s\n", errorMessage(err))
		return 1
	}
	return 0
}

// errorMessage prefers the user-facing message of API errors
func errorMessage(err error) string {
	var ce *client.ClientError
	if errors.As(err, &ce) {
		return ce.UserError()
	}
	return err.Error()
}
