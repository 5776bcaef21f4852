package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/libfinder/internal/library"
	"github.com/teemow/libfinder/internal/server"
)

const (
	// LibrariesURI lists every library of the directory.
	LibrariesURI = "libfinder://libraries"

	// LibraryURITemplate addresses a single library by calendar id.
	LibraryURITemplate = "libfinder://libraries/{id}"

	mimeJSON = "application/json"
)

// libraryView is the JSON shape of a library in resource contents.
type libraryView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	LocationID *int   `json:"location_id,omitempty"`
	Bookable   bool   `json:"bookable"`
}

func viewOf(lib library.Library) libraryView {
	return libraryView{
		ID:         lib.ID,
		Name:       lib.Name,
		LocationID: lib.LocationID,
		Bookable:   lib.HasLocation(),
	}
}

// RegisterLibraryResources registers the library directory resources
func RegisterLibraryResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("mcp server and server context are required")
	}

	librariesResource := mcp.NewResource(
		LibrariesURI,
		"Libraries",
		mcp.WithResourceDescription("Libraries known to libfinder with their calendar and booking location ids"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(librariesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleLibraries(request, sc.Directory())
	})

	libraryTemplate := mcp.NewResourceTemplate(
		LibraryURITemplate,
		"Library",
		mcp.WithTemplateDescription("A single library, addressed by its calendar id"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
	s.AddResourceTemplate(libraryTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleLibrary(request, sc.Directory())
	})

	return nil
}

func handleLibraries(request mcp.ReadResourceRequest, dir *library.Directory) ([]mcp.ResourceContents, error) {
	libs := dir.All()
	views := make([]libraryView, 0, len(libs))
	for _, lib := range libs {
		views = append(views, viewOf(lib))
	}
	return jsonContents(request.Params.URI, map[string]interface{}{
		"count":     len(views),
		"libraries": views,
	})
}

func handleLibrary(request mcp.ReadResourceRequest, dir *library.Directory) ([]mcp.ResourceContents, error) {
	raw := strings.TrimPrefix(request.Params.URI, LibrariesURI+"/")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid library id %q in %s", raw, request.Params.URI)
	}

	lib, ok := dir.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", library.ErrUnknownLibrary, id)
	}
	return jsonContents(request.Params.URI, viewOf(lib))
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
