package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/digest"
	"github.com/teemow/libfinder/internal/finder"
)

func newSpacesCmd() *cobra.Command {
	var (
		date     string
		lib      string
		location int
		start    string
		end      string
	)

	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "Find free spaces of a library",
		Long: `List the bookable spaces of a library with their free slots.

With --start and --end only spaces with a single free slot covering the whole
window are listed. Times are given as HH:MM or hh:mm AM/PM.`,
		Example: `  libfinder spaces --library "Newark Free Library" --start 14:00 --end 15:30
  libfinder spaces --location 4563 --date 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (start == "") != (end == "") {
				return errors.New("--start and --end must be given together")
			}
			if lib == "" && location <= 0 {
				return errors.New("either --library or --location is required")
			}
			if date == "" {
				date = today()
			}

			f, _, err := setup(cmd.Context())
			if err != nil {
				return err
			}

			var startPtr, endPtr *string
			if start != "" {
				startPtr, endPtr = &start, &end
			}

			var spaces []finder.Space
			if location > 0 {
				spaces, err = f.LocationSpaces(cmd.Context(), location, date, startPtr, endPtr)
			} else {
				libs, selErr := f.Directory().Select([]string{lib})
				if selErr != nil {
					return selErr
				}
				if len(libs) == 0 {
					return fmt.Errorf("no library selected")
				}
				spaces, err = f.FindAvailableSpaces(cmd.Context(), libs[0].ID, date, startPtr, endPtr)
			}
			if err != nil {
				return err
			}

			return digest.WriteSpaces(cmd.OutOrStdout(), spaces)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to query (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&lib, "library", "l", "", "Library name or calendar id")
	cmd.Flags().IntVar(&location, "location", 0, "LibCal booking location id, overrides --library")
	cmd.Flags().StringVar(&start, "start", "", "Start of the wanted window (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End of the wanted window (HH:MM)")

	return cmd
}
