package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := NewDirectory([]Library{
		{ID: 8206, Name: "Dover Public Library", LocationID: intPtr(1201)},
		{ID: 9393, Name: "Appoquinimink Public Library"},
		{ID: 8205, Name: "Wilmington Public Library", LocationID: intPtr(1202)},
	})
	require.NoError(t, err)
	return dir
}

func TestDirectory_Resolve(t *testing.T) {
	dir := testDirectory(t)

	lib, ok := dir.Resolve(8206)
	require.True(t, ok)
	assert.Equal(t, "Dover Public Library", lib.Name)
	require.NotNil(t, lib.LocationID)
	assert.Equal(t, 1201, *lib.LocationID)

	_, ok = dir.Resolve(1)
	assert.False(t, ok)
}

func TestDirectory_ByName(t *testing.T) {
	dir := testDirectory(t)

	tests := []struct {
		name   string
		input  string
		wantID int
		wantOK bool
	}{
		{name: "exact", input: "Dover Public Library", wantID: 8206, wantOK: true},
		{name: "lower case", input: "dover public library", wantID: 8206, wantOK: true},
		{name: "surrounding spaces", input: "  WILMINGTON PUBLIC LIBRARY ", wantID: 8205, wantOK: true},
		{name: "prefix is not a match", input: "Dover", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, ok := dir.ByName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, lib.ID)
			}
		})
	}
}

func TestDirectory_DisplayName(t *testing.T) {
	dir := testDirectory(t)
	assert.Equal(t, "Appoquinimink Public Library", dir.DisplayName(9393))
	assert.Equal(t, UnknownName, dir.DisplayName(42))
}

func TestDirectory_AllKeepsOrder(t *testing.T) {
	dir := testDirectory(t)
	assert.Equal(t, []int{8206, 9393, 8205}, dir.IDs())

	all := dir.All()
	all[0].Name = "changed"
	assert.Equal(t, "Dover Public Library", dir.DisplayName(8206), "All must return a copy")
}

func TestDirectory_WithLocations(t *testing.T) {
	dir := testDirectory(t)
	libs := dir.WithLocations()
	require.Len(t, libs, 2)
	assert.Equal(t, 8206, libs[0].ID)
	assert.Equal(t, 8205, libs[1].ID)
}

func TestNewDirectory_Duplicates(t *testing.T) {
	tests := []struct {
		name string
		libs []Library
	}{
		{
			name: "duplicate id",
			libs: []Library{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}},
		},
		{
			name: "duplicate name ignoring case",
			libs: []Library{{ID: 1, Name: "Alpha"}, {ID: 2, Name: "ALPHA"}},
		},
		{
			name: "duplicate location id",
			libs: []Library{{ID: 1, Name: "A", LocationID: intPtr(5)}, {ID: 2, Name: "B", LocationID: intPtr(5)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectory(tt.libs)
			assert.ErrorIs(t, err, ErrDuplicateLibrary)
		})
	}
}

func TestNewDirectory_MissingName(t *testing.T) {
	_, err := NewDirectory([]Library{{ID: 1, Name: "  "}})
	assert.Error(t, err)
}

func TestDirectory_Select(t *testing.T) {
	dir := testDirectory(t)

	libs, err := dir.Select([]string{"dover public library", "8205", "8206", " "})
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, 8206, libs[0].ID)
	assert.Equal(t, 8205, libs[1].ID)

	_, err = dir.Select([]string{"Nowhere Library"})
	assert.ErrorIs(t, err, ErrUnknownLibrary)

}

func TestDirectory_Select_UnknownID(t *testing.T) {
	dir := testDirectory(t)

	libs, err := dir.Select([]string{"8206", "12345", "12345"})
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, 8206, libs[0].ID)
	assert.Equal(t, Library{ID: 12345, Name: UnknownName}, libs[1])
	assert.False(t, libs[1].HasLocation())
	assert.Equal(t, UnknownName, dir.DisplayName(12345))
}

func TestDefault(t *testing.T) {
	dir := Default()
	assert.Equal(t, 33, dir.Len())
	assert.Equal(t, "Dover Public Library", dir.DisplayName(8206))
	assert.Equal(t, "Route 9 Library & Innovation Center", dir.DisplayName(9404))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libraries.yaml")
	data := []byte(`libraries:
  - id: 8206
    name: Dover Public Library
    location_id: 1201
  - id: 9393
    name: Appoquinimink Public Library
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	dir, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.Len())

	lib, ok := dir.Resolve(8206)
	require.True(t, ok)
	assert.True(t, lib.HasLocation())

	lib, ok = dir.Resolve(9393)
	require.True(t, ok)
	assert.False(t, lib.HasLocation())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("libraries: [not: valid: yaml"))
	assert.Error(t, err)
}
