package resources

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/libfinder/internal/library"
)

func intPtr(i int) *int { return &i }

func testDirectory(t *testing.T) *library.Directory {
	t.Helper()
	dir, err := library.NewDirectory([]library.Library{
		{ID: 9404, Name: "Newark Free Library", LocationID: intPtr(4563)},
		{ID: 9395, Name: "Bear Library"},
	})
	require.NoError(t, err)
	return dir
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestHandleLibraries(t *testing.T) {
	contents, err := handleLibraries(readRequest(LibrariesURI), testDirectory(t))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, LibrariesURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var decoded struct {
		Count     int           `json:"count"`
		Libraries []libraryView `json:"libraries"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, 2, decoded.Count)
	assert.Equal(t, "Newark Free Library", decoded.Libraries[0].Name)
	assert.True(t, decoded.Libraries[0].Bookable)
	assert.False(t, decoded.Libraries[1].Bookable)
	assert.Nil(t, decoded.Libraries[1].LocationID)
}

func TestHandleLibrary(t *testing.T) {
	dir := testDirectory(t)

	t.Run("known id", func(t *testing.T) {
		contents, err := handleLibrary(readRequest("libfinder://libraries/9404"), dir)
		require.NoError(t, err)

		var view libraryView
		require.NoError(t, json.Unmarshal([]byte(contents[0].(*mcp.TextResourceContents).Text), &view))
		assert.Equal(t, 9404, view.ID)
		require.NotNil(t, view.LocationID)
		assert.Equal(t, 4563, *view.LocationID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := handleLibrary(readRequest("libfinder://libraries/1"), dir)
		assert.True(t, errors.Is(err, library.ErrUnknownLibrary))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := handleLibrary(readRequest("libfinder://libraries/newark"), dir)
		assert.ErrorContains(t, err, "invalid library id")
	})
}

func TestRegisterLibraryResourcesRequiresArguments(t *testing.T) {
	assert.Error(t, RegisterLibraryResources(nil, nil))
}
