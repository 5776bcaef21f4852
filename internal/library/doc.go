// Package library holds the static directory of libraries the finder queries.
//
// Each library maps a LibCal calendar id to a display name and, for libraries that
// offer room booking, a LibCal space location id. The table is configuration: it is
// loaded once at startup (from YAML or the built-in default) and never changes.
//
// Example usage:
//
//	dir, err := library.Load("libraries.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lib, ok := dir.ByName("dover public library")
package library
