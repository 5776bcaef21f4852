package library

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownName is the display placeholder for identifiers that are not in the directory.
const UnknownName = "Unknown library"

var (
	// ErrUnknownLibrary is returned when a selection does not match any library.
	ErrUnknownLibrary = errors.New("unknown library")

	// ErrDuplicateLibrary is returned when the table repeats an id, location id, or name.
	ErrDuplicateLibrary = errors.New("duplicate library")
)

//go:embed libraries.yaml
var defaultTable []byte

// Library is one entry of the directory.
type Library struct {
	// ID is the LibCal calendar id of the library's event feed
	ID int `yaml:"id" json:"id"`
	// Name is the display name
	Name string `yaml:"name" json:"name"`
	// LocationID is the LibCal space location id; nil when the library has no room booking
	LocationID *int `yaml:"location_id,omitempty" json:"location_id,omitempty"`
}

// HasLocation reports whether the library has a booking location.
func (l Library) HasLocation() bool {
	return l.LocationID != nil
}

// table is the on-disk YAML shape.
type table struct {
	Libraries []Library `yaml:"libraries"`
}

// Directory is an immutable lookup table from identifier and name to Library.
type Directory struct {
	libraries []Library
	byID      map[int]int
	byName    map[string]int
}

// NewDirectory builds a directory from the given libraries, preserving their order.
func NewDirectory(libs []Library) (*Directory, error) {
	d := &Directory{
		libraries: make([]Library, 0, len(libs)),
		byID:      make(map[int]int, len(libs)),
		byName:    make(map[string]int, len(libs)),
	}
	locations := make(map[int]int, len(libs))

	for _, lib := range libs {
		name := strings.TrimSpace(lib.Name)
		if name == "" {
			return nil, fmt.Errorf("library %d has no name", lib.ID)
		}
		if _, ok := d.byID[lib.ID]; ok {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateLibrary, lib.ID)
		}
		key := nameKey(name)
		if _, ok := d.byName[key]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateLibrary, name)
		}
		if lib.LocationID != nil {
			if other, ok := locations[*lib.LocationID]; ok {
				return nil, fmt.Errorf("%w: location id %d used by %d and %d", ErrDuplicateLibrary, *lib.LocationID, other, lib.ID)
			}
			locations[*lib.LocationID] = lib.ID
			lid := *lib.LocationID
			lib.LocationID = &lid
		}
		lib.Name = name

		d.byID[lib.ID] = len(d.libraries)
		d.byName[key] = len(d.libraries)
		d.libraries = append(d.libraries, lib)
	}

	return d, nil
}

// Parse decodes a YAML library table.
func Parse(data []byte) (*Directory, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse library table: %w", err)
	}
	return NewDirectory(t.Libraries)
}

// Load reads a YAML library table from path.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library table %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in Delaware Libraries table.
func Default() *Directory {
	d, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("built-in library table is invalid: %v", err))
	}
	return d
}

// Resolve looks up a library by calendar id.
func (d *Directory) Resolve(id int) (Library, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Library{}, false
	}
	return d.libraries[i], true
}

// ByName looks up a library by display name, ignoring case and surrounding whitespace.
func (d *Directory) ByName(name string) (Library, bool) {
	i, ok := d.byName[nameKey(name)]
	if !ok {
		return Library{}, false
	}
	return d.libraries[i], true
}

// DisplayName returns the library's name or UnknownName.
func (d *Directory) DisplayName(id int) string {
	if lib, ok := d.Resolve(id); ok {
		return lib.Name
	}
	return UnknownName
}

// All returns every library in configured order.
func (d *Directory) All() []Library {
	out := make([]Library, len(d.libraries))
	copy(out, d.libraries)
	return out
}

// IDs returns every calendar id in configured order.
func (d *Directory) IDs() []int {
	ids := make([]int, len(d.libraries))
	for i, lib := range d.libraries {
		ids[i] = lib.ID
	}
	return ids
}

// WithLocations returns the libraries that have a booking location.
func (d *Directory) WithLocations() []Library {
	var out []Library
	for _, lib := range d.libraries {
		if lib.HasLocation() {
			out = append(out, lib)
		}
	}
	return out
}

// Len returns the number of libraries.
func (d *Directory) Len() int {
	return len(d.libraries)
}

// Select resolves user selections, each either a numeric calendar id or a display name.
// A numeric id missing from the table is kept as a placeholder named UnknownName; a
// name that matches no library is an error. Duplicates are dropped and the first-seen
// order is kept.
func (d *Directory) Select(selections []string) ([]Library, error) {
	seen := make(map[int]bool, len(selections))
	out := make([]Library, 0, len(selections))

	for _, sel := range selections {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}

		lib, ok := d.ByName(sel)
		if !ok {
			if id, err := strconv.Atoi(sel); err == nil {
				if lib, ok = d.Resolve(id); !ok {
					lib, ok = Library{ID: id, Name: UnknownName}, true
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLibrary, sel)
		}

		if seen[lib.ID] {
			continue
		}
		seen[lib.ID] = true
		out = append(out, lib)
	}

	return out, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
