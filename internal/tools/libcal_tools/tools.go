package libcal_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/libfinder/internal/digest"
	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/ical"
	"github.com/teemow/libfinder/internal/library"
	"github.com/teemow/libfinder/internal/server"
	"github.com/teemow/libfinder/internal/tools/batch"
	"github.com/teemow/libfinder/internal/tools/common"
)

// Tool names.
const (
	ToolListLibraries = "libcal_list_libraries"
	ToolFindEvents    = "libcal_find_events"
	ToolRoomBookings  = "libcal_room_bookings"
	ToolFindSpaces    = "libcal_find_spaces"

	ToolBatchRoomBookings = "libcal_batch_room_bookings"
)

const (
	formatText = "text"
	formatICS  = "ics"
)

// RegisterLibCalTools registers the library tools with the MCP server. All of them
// are read-only.
func RegisterLibCalTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return errors.New("mcp server and server context are required")
	}

	listLibrariesTool := mcp.NewTool(ToolListLibraries,
		mcp.WithDescription("List the libraries whose events and rooms can be queried, with their ids and whether they offer room booking"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listLibrariesTool, common.InstrumentedToolHandler(ToolListLibraries, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLibraries(ctx, request, sc)
		}))

	findEventsTool := mcp.NewTool(ToolFindEvents,
		mcp.WithDescription("Find library events that start and end on a given day"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString(common.ArgDate,
			mcp.Required(),
			mcp.Description("Day to search, as YYYY-MM-DD"),
		),
		mcp.WithString(common.ArgLibraries,
			mcp.Description("Comma-separated library names or ids (default: all libraries)"),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Maximum description length in characters (default: 77)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' (default) or 'ics' for an iCalendar feed"),
			mcp.Enum(formatText, formatICS),
		),
	)
	s.AddTool(findEventsTool, common.InstrumentedToolHandler(ToolFindEvents, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindEvents(ctx, request, sc)
		}))

	roomBookingsTool := mcp.NewTool(ToolRoomBookings,
		mcp.WithDescription("Show the room bookings of a library for a day, grouped by room. Rooms without bookings are free all day"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString(common.ArgDate,
			mcp.Required(),
			mcp.Description("Day to search, as YYYY-MM-DD"),
		),
		mcp.WithString(common.ArgLibrary,
			mcp.Required(),
			mcp.Description("Library name or id"),
		),
	)
	s.AddTool(roomBookingsTool, common.InstrumentedToolHandler(ToolRoomBookings, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRoomBookings(ctx, request, sc)
		}))

	batchRoomBookingsTool := mcp.NewTool(ToolBatchRoomBookings,
		mcp.WithDescription("Show the room bookings of several libraries for a day as a JSON summary. Libraries without room booking are reported as skipped"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString(common.ArgDate,
			mcp.Required(),
			mcp.Description("Day to search, as YYYY-MM-DD"),
		),
		mcp.WithString(common.ArgLibraries,
			mcp.Required(),
			mcp.Description("Library names or ids, comma-separated or as a JSON array"),
		),
	)
	s.AddTool(batchRoomBookingsTool, common.InstrumentedToolHandler(ToolBatchRoomBookings, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchRoomBookings(ctx, request, sc)
		}))

	findSpacesTool := mcp.NewTool(ToolFindSpaces,
		mcp.WithDescription("Find bookable spaces of a library with a free slot covering a time window. Without start and end, all spaces and their free slots are listed"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString(common.ArgDate,
			mcp.Required(),
			mcp.Description("Day to search, as YYYY-MM-DD"),
		),
		mcp.WithString(common.ArgLibrary,
			mcp.Required(),
			mcp.Description("Library name or id"),
		),
		mcp.WithString("start",
			mcp.Description("Start of the window, as HH:MM (24-hour) or h:mm AM/PM"),
		),
		mcp.WithString("end",
			mcp.Description("End of the window, as HH:MM (24-hour) or h:mm AM/PM"),
		),
	)
	s.AddTool(findSpacesTool, common.InstrumentedToolHandler(ToolFindSpaces, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindSpaces(ctx, request, sc)
		}))

	return nil
}

func handleListLibraries(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	libs := sc.Directory().All()
	if len(libs) == 0 {
		return mcp.NewToolResultText("No libraries configured"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d libraries:\n", len(libs))
	for _, lib := range libs {
		if lib.HasLocation() {
			fmt.Fprintf(&sb, "- %s (ID: %d, room booking location %d)\n", lib.Name, lib.ID, *lib.LocationID)
		} else {
			fmt.Fprintf(&sb, "- %s (ID: %d)\n", lib.Name, lib.ID)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleFindEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date := common.StringArg(args, common.ArgDate)
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}

	maxLength, err := common.IntArg(args, "max_length", sc.MaxLength())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := common.StringArg(args, "format")
	if format == "" {
		format = formatText
	}
	if format != formatText && format != formatICS {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q, use %q or %q", format, formatText, formatICS)), nil
	}

	dir := sc.Directory()
	ids := dir.IDs()
	if selections := common.ListArg(args, common.ArgLibraries); len(selections) > 0 {
		libs, err := dir.Select(selections)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids = libraryIDs(libs)
	}

	events, err := sc.Finder().FetchEvents(ctx, date, ids)
	if err != nil {
		return errorResult("Failed to fetch events", err), nil
	}

	if format == formatICS {
		out, err := ical.Export("Library events "+date, events, dir)
		if err != nil {
			return errorResult("Failed to build calendar", err), nil
		}
		return mcp.NewToolResultText(out), nil
	}

	var sb strings.Builder
	if err := digest.WriteEvents(&sb, date, events, dir, maxLength); err != nil {
		return errorResult("Failed to render events", err), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleRoomBookings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date := common.StringArg(args, common.ArgDate)
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	lib, result := selectLibrary(args, sc.Directory())
	if result != nil {
		return result, nil
	}

	rooms, err := sc.Finder().RoomBookings(ctx, lib.ID, date)
	if err != nil {
		return errorResult("Failed to fetch room bookings", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Room bookings at %s on %s:\n", lib.Name, date)
	if err := digest.WriteRooms(&sb, rooms); err != nil {
		return errorResult("Failed to render room bookings", err), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleBatchRoomBookings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date := common.StringArg(args, common.ArgDate)
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	if err := finder.ValidateDate(date); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	selections, err := batch.ParseStringOrArray(args[common.ArgLibraries], common.ArgLibraries)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir := sc.Directory()
	results, err := batch.Process(ctx, selections, func(ctx context.Context, sel string) (string, error) {
		libs, err := dir.Select([]string{sel})
		if err != nil {
			return "", err
		}
		rooms, err := sc.Finder().RoomBookings(ctx, libs[0].ID, date)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s:\n", libs[0].Name)
		if err := digest.WriteRooms(&sb, rooms); err != nil {
			return "", err
		}
		return sb.String(), nil
	}, finder.IsFatal)
	if err != nil {
		return errorResult("Failed to fetch room bookings", err), nil
	}

	out, err := batch.FormatResults(results)
	if err != nil {
		return errorResult("Failed to render room bookings", err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleFindSpaces(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	date := common.StringArg(args, common.ArgDate)
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	lib, result := selectLibrary(args, sc.Directory())
	if result != nil {
		return result, nil
	}

	start := common.OptionalStringArg(args, "start")
	end := common.OptionalStringArg(args, "end")
	if (start == nil) != (end == nil) {
		return mcp.NewToolResultError("start and end must be given together"), nil
	}

	spaces, err := sc.Finder().FindAvailableSpaces(ctx, lib.ID, date, start, end)
	if err != nil {
		return errorResult("Failed to find spaces", err), nil
	}

	var sb strings.Builder
	if start != nil {
		fmt.Fprintf(&sb, "Spaces at %s free from %s to %s on %s:\n", lib.Name, *start, *end, date)
	} else {
		fmt.Fprintf(&sb, "Spaces at %s on %s:\n", lib.Name, date)
	}
	if err := digest.WriteSpaces(&sb, spaces); err != nil {
		return errorResult("Failed to render spaces", err), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// selectLibrary resolves the single library argument. A non-nil result is the error
// to return to the client.
func selectLibrary(args map[string]interface{}, dir *library.Directory) (library.Library, *mcp.CallToolResult) {
	sel := common.StringArg(args, common.ArgLibrary)
	if sel == "" {
		return library.Library{}, mcp.NewToolResultError("library is required")
	}
	libs, err := dir.Select([]string{sel})
	if err != nil {
		return library.Library{}, mcp.NewToolResultError(err.Error())
	}
	return libs[0], nil
}

func libraryIDs(libs []library.Library) []int {
	ids := make([]int, 0, len(libs))
	for _, lib := range libs {
		ids = append(ids, lib.ID)
	}
	return ids
}

// errorResult reports a failed operation. Input errors are shown as they are, upstream
// failures get a prefix.
func errorResult(prefix string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, finder.ErrInvalidDate),
		errors.Is(err, finder.ErrInvalidWindow),
		errors.Is(err, finder.ErrNoBookingLocation),
		errors.Is(err, library.ErrUnknownLibrary):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
	}
}
