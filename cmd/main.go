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
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/drgo/fhash"
	"github.com/drgo/fhash/internal/config"
	"github.com/drgo/fhash/internal/tui"
)

const VERSION = "1.0.0"

// exitMismatch is returned when --check does not match the digest.
const exitMismatch = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app := &cliApp{
		out:        os.Stdout,
		err:        os.Stderr,
		isTerminal: term.IsTerminal(int(os.Stdout.Fd())),
		runTUI:     runProgram,
	}
	err := app.run(ctx, os.Args[1:])
	stop()
	if err != nil {
		// Outcomes already reported by the command carry their own code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run with -h for usage information.")
		os.Exit(fhash.ExitFailure)
	}
}

// exitError ends the process with code after the outcome was printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) ExitCode() int {
	return e.code
}

// cliApp holds the process-level dependencies so tests can swap them.
type cliApp struct {
	out, err    io.Writer
	isTerminal  bool
	runTUI      func(ctx context.Context, model tui.Model) error
	dotenvFiles []string
}

// cliOptions are the flag values, seeded from the environment.
type cliOptions struct {
	algorithm      string
	chunkSize      int
	check          string
	quiet          bool
	json           bool
	noTUI          bool
	tick           time.Duration
	verbose        bool
	logFile        string
	listAlgorithms bool
	noColor        bool
}

func (app *cliApp) run(ctx context.Context, args []string) error {
	cfg, err := config.Load(app.dotenvFiles...)
	if err != nil {
		return err
	}
	opts := &cliOptions{noColor: cfg.ColorDisabled()}

	cmd := &cobra.Command{
		Use:   "fhash [flags] FILE",
		Short: "Hash a file with live progress, pause and abort",
		Long: "fhash computes a cryptographic digest of FILE. On a terminal it shows\n" +
			"live progress; press space to pause or resume and q to abort.",
		Example:       "  fhash ubuntu.iso\n  fhash -a blake3 --check 1f0e... backup.tar",
		Args:          cobra.MaximumNArgs(1),
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.hash(cmd.Context(), opts, args)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(app.out)
	cmd.SetErr(app.err)
	registerFlags(cmd.Flags(), opts, cfg)

	return cmd.ExecuteContext(ctx)
}

func registerFlags(flags *pflag.FlagSet, opts *cliOptions, cfg config.Config) {
	flags.StringVarP(&opts.algorithm, "algorithm", "a", cfg.Algorithm, "digest algorithm (see --list-algorithms)")
	flags.IntVar(&opts.chunkSize, "chunk-size", cfg.ChunkSize, "bytes read per chunk")
	flags.StringVarP(&opts.check, "check", "c", "", "expected digest in hex; exit 3 on mismatch")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "print only the result")
	flags.BoolVar(&opts.json, "json", false, "emit JSON lines for scripting")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "use a single progress line instead of the interactive view")
	flags.DurationVar(&opts.tick, "tick", cfg.TickInterval, "progress refresh interval")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFile, "log-file", cfg.LogFile, "write logs to this file as JSON")
	flags.BoolVar(&opts.listAlgorithms, "list-algorithms", false, "print the supported algorithms and exit")
}

func (app *cliApp) hash(ctx context.Context, opts *cliOptions, args []string) error {
	if opts.listAlgorithms {
		names := lo.Map(fhash.Algorithms(), func(algorithm fhash.Algorithm, _ int) string {
			return algorithm.String()
		})
		_, err := fmt.Fprintln(app.out, strings.Join(names, "\n"))
		return err
	}
	if len(args) == 0 {
		return errors.New("a FILE argument is required")
	}
	path := args[0]

	settings := config.Config{Algorithm: opts.algorithm, ChunkSize: opts.chunkSize, TickInterval: opts.tick}
	if err := settings.Validate(); err != nil {
		return err
	}
	algorithm := settings.ParsedAlgorithm()

	interactive := app.isTerminal && !opts.quiet && !opts.json && !opts.noTUI
	logger, closeLog, err := app.newLogger(opts, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	sessionOpts := []fhash.Option{
		fhash.WithChunkSize(opts.chunkSize),
		fhash.WithLogger(logger),
	}
	if opts.check != "" {
		sessionOpts = append(sessionOpts, fhash.WithExpectedDigest(opts.check))
	}
	session, err := fhash.StartSession(path, algorithm, sessionOpts...)
	if session == nil {
		return err
	}
	if err != nil {
		logger.Debug("input rejected", "error", err)
	}

	report := app.newReporter(opts)
	if interactive {
		if err := app.runTUI(ctx, tui.NewModel(session, opts.tick)); err != nil {
			session.Abort()
			logger.Warn("interactive view stopped", "error", err)
		}
		report.Final(session.Snapshot())
	} else {
		session.Run(ctx, nil, opts.tick, func(snapshot fhash.Snapshot) {
			if snapshot.Done() {
				report.Final(snapshot)
				return
			}
			report.Progress(snapshot)
		})
	}

	if code := exitCode(session); code != fhash.ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

func exitCode(session *fhash.Session) int {
	if session.Outcome() == fhash.OutcomeFinished && session.Snapshot().Verify == fhash.VerifyMismatch {
		return exitMismatch
	}
	return session.Outcome().ExitCode()
}

func (app *cliApp) newReporter(opts *cliOptions) reporter {
	if opts.json {
		return newJSONReporter(app.out)
	}
	colored := app.isTerminal && !opts.noColor
	return newPlainReporter(app.out, app.err, plainOptions{
		live:    app.isTerminal && !opts.quiet,
		quiet:   opts.quiet,
		colored: colored,
	})
}

// newLogger sends logs to --log-file as JSON when given. Otherwise an
// interactive session discards them so the screen stays intact, and a
// plain one writes text to stderr.
func (app *cliApp) newLogger(opts *cliOptions, interactive bool) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch {
	case opts.logFile != "":
		file, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return slog.New(slog.NewJSONHandler(file, handlerOpts)), func() { file.Close() }, nil
	case interactive:
		return slog.New(slog.DiscardHandler), func() {}, nil
	default:
		return slog.New(slog.NewTextHandler(app.err, handlerOpts)), func() {}, nil
	}
}

// runProgram runs the interactive view until the session ends or the
// user aborts it.
func runProgram(ctx context.Context, model tui.Model) error {
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stdout)).Run()
	return err
}
