// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/gh-review-activity/internal/config"
	"github.com/naka-gawa/gh-review-activity/internal/domain"
	"github.com/naka-gawa/gh-review-activity/internal/gateway"
	"github.com/naka-gawa/gh-review-activity/internal/logger"
	"github.com/naka-gawa/gh-review-activity/internal/report"
	"github.com/naka-gawa/gh-review-activity/internal/usecase"
)

// fetcherFactory builds the gateway once the configuration is known.
type fetcherFactory func(cfg config.GitHubConfig, logger *zap.Logger) (gateway.Fetcher, error)

type rootOptions struct {
	configPath    string
	mode          string
	titleWidth    int
	waitRateLimit bool
	noSummary     bool
	verbose       bool
}

func newRootCmd(newFetcher fetcherFactory) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "gh-review-activity <username> [daysBack]",
		Short: "Summarizes a GitHub user's recent pull request reviews",
		Long: `gh-review-activity lists the pull requests a GitHub user approved, requested
changes on or commented on during the last days (default 7, at most 90),
one line per pull request and day, most recent day first.

The GitHub token is read from the GITHUB_TOKEN environment variable.`,
		Example: `  gh-review-activity octocat
  gh-review-activity octocat 30 --mode events`,
		Args: validateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts, newFetcher)
		},
		// execute prints usage to stderr itself, after the error.
		SilenceUsage: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (default $"+config.EnvConfigPath+")")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", config.ModeSearch, "How to find activity: search, events or graphql")
	cmd.Flags().IntVarP(&opts.titleWidth, "title-width", "w", config.DefaultTitleWidth, "Display width titles are padded or cut to")
	cmd.Flags().BoolVar(&opts.waitRateLimit, "wait-rate-limit", false, "Sleep and resume when GitHub's secondary rate limit is hit")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "Do not print the totals after the report")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose/debug logging")
	return cmd
}

// Execute runs the root command. This is called by main.main().
// It is the only place that turns an error into an exit status.
func Execute() {
	if err := execute(newRootCmd(gateway.NewGitHubGateway)); err != nil {
		os.Exit(1)
	}
}

// usageError marks errors caused by invalid arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// execute runs cmd. Cobra reports the error on stderr; usage errors are
// followed by the usage text on the same stream.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return err
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return &usageError{err: err}
	}
	user := strings.TrimSpace(args[0])
	if user == "" {
		return &usageError{err: errors.New("username must not be empty")}
	}
	if err := config.ValidateUsername(user); err != nil {
		return &usageError{err: err}
	}
	if len(args) == 2 {
		if _, err := parseDaysBack(args[1]); err != nil {
			return &usageError{err: err}
		}
	}
	return nil
}

func parseDaysBack(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("days must be an integer, got %q", s)
	}
	if err := config.ValidateDaysBack(days); err != nil {
		return 0, err
	}
	return days, nil
}

func runReport(cmd *cobra.Command, args []string, opts *rootOptions, newFetcher fetcherFactory) error {
	user := strings.TrimSpace(args[0])
	daysBack := config.DefaultDaysBack
	if len(args) == 2 {
		var err error
		if daysBack, err = parseDaysBack(args[1]); err != nil {
			return err
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	bar := newSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Fetching review activity for %s", user), !opts.verbose)
	buckets, err := fetchReport(cmd, cfg, newSpinnerWriter(bar, cmd.ErrOrStderr()), newFetcher, user, daysBack)
	finishBar(bar)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if buckets.Len() == 0 {
		fmt.Fprintf(out, "No review activity found for %s in the last %d days.\n", user, daysBack)
		return nil
	}
	fmt.Fprintln(out, report.NewFormatter(cfg.Output.TitleWidth).Format(buckets))
	if cfg.Output.Summary {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.Summarize(buckets))
	}
	return nil
}

// fetchReport builds the gateway and runs the report. Logs go to logOut.
func fetchReport(cmd *cobra.Command, cfg config.Config, logOut io.Writer, newFetcher fetcherFactory, user string, daysBack int) (domain.DayBuckets, error) {
	log, err := logger.New(cfg.Log.Level, logOut)
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Sync() }()

	fetcher, err := newFetcher(cfg.GitHub, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return usecase.NewReporter(fetcher, log).Report(cmd.Context(), user, daysBack)
}

// applyFlags lets explicitly set flags override the file and environment.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.GitHub.Mode = opts.mode
	}
	if flags.Changed("title-width") {
		cfg.Output.TitleWidth = opts.titleWidth
	}
	if flags.Changed("wait-rate-limit") {
		cfg.GitHub.WaitOnRateLimit = opts.waitRateLimit
	}
	if opts.noSummary {
		cfg.Output.Summary = false
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
}
