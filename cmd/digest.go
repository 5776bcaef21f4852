package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/digest"
)

func newDigestCmd() *cobra.Command {
	var (
		date      string
		schedule  string
		libraries []string
		maxLength int
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the daily events and room digest",
		Long: `Print a digest with the events of the day and the room bookings of every
selected library.

Without --schedule the digest runs once. With --schedule it runs on every tick of a
standard five-field cron expression until interrupted.`,
		Example: `  libfinder digest
  libfinder digest --date 2024-03-15 --library "Newark Free Library"
  libfinder digest --schedule "0 7 * * 1-5"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule != "" {
				if err := digest.ValidateSchedule(schedule); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			f, logger, err := setup(ctx)
			if err != nil {
				return err
			}

			libs, err := selectLibraries(f.Directory(), libraries)
			if err != nil {
				return err
			}

			sched := digest.New(f, f.Directory(), cmd.OutOrStdout(), digest.Options{
				Schedule:  schedule,
				Libraries: libraryIDs(libs),
				MaxLength: maxLength,
				Logger:    logger,
			})

			if schedule == "" {
				if date == "" {
					return sched.RunOnce(ctx)
				}
				return sched.RunFor(ctx, date)
			}
			return sched.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date of a single digest (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for repeated digests, e.g. \"0 7 * * *\"")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Library name or calendar id (repeatable, comma-separated)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum description length (default: 77)")

	return cmd
}
