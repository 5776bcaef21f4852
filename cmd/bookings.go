package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/digest"
	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/logging"
)

func newBookingsCmd() *cobra.Command {
	var (
		date      string
		libraries []string
		location  int
	)

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Show the room bookings of a day",
		Long: `Show the rooms of a library's booking location with their confirmed and pending
bookings. Rooms without bookings are listed as free all day.

Libraries without a booking location are skipped. --location queries a LibCal
location id directly, bypassing the library table.`,
		Example: `  libfinder bookings --library "Newark Free Library"
  libfinder bookings --location 4563 --date 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = today()
			}

			f, logger, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if location > 0 {
				rooms, err := f.LocationBookings(cmd.Context(), location, date)
				if err != nil {
					return err
				}
				return digest.WriteRooms(out, rooms)
			}

			libs, err := selectLibraries(f.Directory(), libraries)
			if err != nil {
				return err
			}

			printed := false
			for _, lib := range libs {
				rooms, err := f.RoomBookings(cmd.Context(), lib.ID, date)
				if err != nil && !finder.IsFatal(err) {
					logger.Info("skipping library without booking location",
						logging.Library(lib.ID),
						slog.String("name", lib.Name),
						logging.Err(err))
					continue
				}
				if err != nil {
					return err
				}

				if printed {
					fmt.Fprintln(out)
				}
				printed = true
				fmt.Fprintln(out, lib.Name)
				if err := digest.WriteRooms(out, rooms); err != nil {
					return err
				}
			}
			if !printed {
				fmt.Fprintln(out, "No libraries with room booking selected")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to query (YYYY-MM-DD, default: today)")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Library name or calendar id (repeatable, comma-separated)")
	cmd.Flags().IntVar(&location, "location", 0, "LibCal booking location id, overrides --library")

	return cmd
}
