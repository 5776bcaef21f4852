package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/digest"
	"github.com/teemow/libfinder/internal/ical"
)

const (
	formatText = "text"
	formatICS  = "ics"
)

func newEventsCmd() *cobra.Command {
	var (
		date      string
		libraries []string
		format    string
		maxLength int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the events of a day",
		Long: `List the events that start and end on the given date for the selected libraries.

Libraries are selected by name or calendar id; without --library every library is queried.
With --format ics the events are written as an iCalendar feed.`,
		Example: `  libfinder events --date 2024-03-15
  libfinder events --library "Newark Free Library" --library 9395
  libfinder events --format ics > events.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatICS {
				return fmt.Errorf("invalid format %q: must be %s or %s", format, formatText, formatICS)
			}
			if date == "" {
				date = today()
			}

			f, _, err := setup(cmd.Context())
			if err != nil {
				return err
			}

			libs, err := selectLibraries(f.Directory(), libraries)
			if err != nil {
				return err
			}

			events, err := f.FetchEvents(cmd.Context(), date, libraryIDs(libs))
			if err != nil {
				return err
			}

			if format == formatICS {
				out, err := ical.Export("Library events "+date, events, f.Directory())
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}

			return digest.WriteEvents(cmd.OutOrStdout(), date, events, f.Directory(), maxLength)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to query (YYYY-MM-DD, default: today)")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Library name or calendar id (repeatable, comma-separated)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: "+strings.Join([]string{formatText, formatICS}, " or "))
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum description length (default: 77)")

	return cmd
}
