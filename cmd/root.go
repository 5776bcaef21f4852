package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/config"
	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/libcal"
)

// rootCmd represents the base command for the libfinder application
var rootCmd = &cobra.Command{
	Use:   "libfinder",
	Short: "Find library events, room bookings and free spaces in LibCal",
	Long: `libfinder queries the Delaware Libraries LibCal API for the events of a day,
the room bookings of a library and the spaces that are free for a time window.

It can run as:
  - A command-line tool (events, bookings, spaces, digest)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// globalOptions are bound to the persistent flags of the root command.
type globalOptions struct {
	debug         bool
	envFile       string
	clientID      string
	clientSecret  string
	apiURL        string
	timeout       time.Duration
	librariesFile string
}

var opts globalOptions

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "libfinder version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file (default: .env if present)")
	flags.StringVar(&opts.clientID, "client-id", "", "LibCal client id (env: LIBCAL_CLIENT_ID)")
	flags.StringVar(&opts.clientSecret, "client-secret", "", "LibCal client secret (env: LIBCAL_CLIENT_SECRET)")
	flags.StringVar(&opts.apiURL, "api-url", "", "LibCal API base URL (env: LIBCAL_API_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout for LibCal requests (env: LIBCAL_TIMEOUT)")
	flags.StringVar(&opts.librariesFile, "libraries-file", "", "YAML library table (env: LIBCAL_LIBRARIES_FILE)")

	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newBookingsCmd())
	rootCmd.AddCommand(newSpacesCmd())
	rootCmd.AddCommand(newLibrariesCmd())
	rootCmd.AddCommand(newDigestCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() (config.Config, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	if opts.clientID != "" {
		cfg.ClientID = opts.clientID
	}
	if opts.clientSecret != "" {
		cfg.ClientSecret = opts.clientSecret
	}
	if opts.apiURL != "" {
		cfg.BaseURL = opts.apiURL
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}
	if opts.librariesFile != "" {
		cfg.LibrariesFile = opts.librariesFile
	}
	return cfg, nil
}

// newLogger creates the process logger. Logs always go to w (stderr in practice) so
// stdout stays clean for results and the stdio transport.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newFinder builds the finder from the configuration.
func newFinder(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*finder.Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir, err := cfg.Directory()
	if err != nil {
		return nil, err
	}

	client, err := libcal.NewClient(ctx, cfg.ClientConfig(logger, metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create LibCal client: %w", err)
	}

	return finder.New(client, dir, logger), nil
}

// setup runs the common preamble of commands that talk to LibCal.
func setup(ctx context.Context) (*finder.Finder, *slog.Logger, error) {
	logger := newLogger(os.Stderr, opts.debug)
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	f, err := newFinder(ctx, cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return f, logger, nil
}

// today returns the current local date.
func today() string {
	return time.Now().Format(finder.DateLayout)
}
