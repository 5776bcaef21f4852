package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/libfinder/internal/library"
)

func newLibrariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "List the configured libraries",
		Long: `List the libraries of the library table with their calendar id and booking
location id. The table is the built-in Delaware table unless --libraries-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.Directory()
			if err != nil {
				return err
			}
			return writeLibraries(cmd.OutOrStdout(), dir)
		},
	}
}

func writeLibraries(w io.Writer, dir *library.Directory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION")
	for _, lib := range dir.All() {
		location := "-"
		if lib.HasLocation() {
			location = fmt.Sprintf("%d", *lib.LocationID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", lib.ID, lib.Name, location)
	}
	return tw.Flush()
}

// selectLibraries resolves the values of repeated --library flags. Each value may hold
// a comma-separated list. No selection returns every library.
func selectLibraries(dir *library.Directory, values []string) ([]library.Library, error) {
	var selections []string
	for _, v := range values {
		selections = append(selections, parseCommaSeparatedList(v)...)
	}
	if len(selections) == 0 {
		return dir.All(), nil
	}
	return dir.Select(selections)
}

// libraryIDs returns the calendar ids of libs.
func libraryIDs(libs []library.Library) []int {
	ids := make([]int, 0, len(libs))
	for _, lib := range libs {
		ids = append(ids, lib.ID)
	}
	return ids
}

// parseCommaSeparatedList parses a comma-separated string into a slice of trimmed strings
// Empty strings are filtered out
func parseCommaSeparatedList(input string) []string {
	if input == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
