package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/library"
	"github.com/teemow/libfinder/internal/server"
	"github.com/teemow/libfinder/internal/tools/common"
	"github.com/teemow/libfinder/internal/tools/libcal_tools"
)

// Tool topics in document order.
var docTopics = []string{"Libraries", "Events", "Room bookings", "Spaces", "Other"}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Write the MCP tool reference as markdown",
		Long: `Register the LibCal tools against an offline finder and write a markdown
reference of their arguments, grouped by what they query. The library summary at the
top reflects the table in use, so --libraries-file changes it.`,
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

			if outputFile == "" {
				return runGenerateDocs(cmd.OutOrStdout(), dir)
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outputFile, err)
			}
			if err := runGenerateDocs(f, dir); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// runGenerateDocs writes the tool reference for dir to w. The finder has no upstream,
// tools are only listed.
func runGenerateDocs(w io.Writer, dir *library.Directory) error {
	sc, err := server.NewServerContext(context.Background(), finder.New(nil, dir, nil))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("libfinder", version, mcpserver.WithToolCapabilities(true))
	if err := libcal_tools.RegisterLibCalTools(s, sc); err != nil {
		return fmt.Errorf("failed to register LibCal tools: %w", err)
	}

	registered := s.ListTools()
	tools := make([]mcp.Tool, 0, len(registered))
	for _, st := range registered {
		tools = append(tools, st.Tool)
	}

	_, err = io.WriteString(w, toolsMarkdown(tools, dir))
	return err
}

func toolsMarkdown(tools []mcp.Tool, dir *library.Directory) string {
	var sb strings.Builder

	sb.WriteString("# libfinder MCP tools\n\n")
	fmt.Fprintf(&sb, "The server answers questions about %d libraries; %d of them offer room booking.\n",
		dir.Len(), len(dir.WithLocations()))
	sb.WriteString("Libraries are chosen by display name (case-insensitive) or LibCal calendar id. ")
	sb.WriteString("An id missing from the table is queried as \"" + library.UnknownName + "\". ")
	sb.WriteString("Dates are `YYYY-MM-DD`.\n\n")

	byTopic := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		topic := toolTopic(tool.Name)
		byTopic[topic] = append(byTopic[topic], tool)
	}

	for _, topic := range docTopics {
		group := byTopic[topic]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&sb, "## %s\n\n", topic)
		for _, tool := range group {
			sb.WriteString(toolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// toolTopic maps a tool name to the kind of LibCal data it returns.
func toolTopic(name string) string {
	if !strings.HasPrefix(name, "libcal_") {
		return "Other"
	}
	switch {
	case strings.HasSuffix(name, "_libraries"):
		return "Libraries"
	case strings.HasSuffix(name, "_events"):
		return "Events"
	case strings.HasSuffix(name, "_room_bookings"):
		return "Room bookings"
	case strings.HasSuffix(name, "_spaces"):
		return "Spaces"
	default:
		return "Other"
	}
}

func toolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	scope := toolScope(tool)
	if hint := tool.Annotations.ReadOnlyHint; hint != nil && *hint {
		scope = append(scope, "read-only")
	}
	if len(scope) > 0 {
		fmt.Fprintf(&sb, "*Scope:* %s\n\n", strings.Join(scope, ", "))
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}

		required := "no"
		if isRequired(tool, name) {
			required = "yes"
		}

		desc, _ := prop["description"].(string)
		if values, ok := prop["enum"].([]string); ok && len(values) > 0 {
			desc = strings.TrimSpace(desc + " One of `" + strings.Join(values, "`, `") + "`.")
		}

		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, propertyType(prop), required, desc)
	}

	return sb.String()
}

// toolScope describes how much LibCal data one call covers.
func toolScope(tool mcp.Tool) []string {
	props := tool.InputSchema.Properties
	has := func(name string) bool { _, ok := props[name]; return ok }

	var scope []string
	if has(common.ArgDate) {
		scope = append(scope, "one day")
	}
	switch {
	case has(common.ArgLibrary):
		scope = append(scope, "one library")
	case has(common.ArgLibraries) && isRequired(tool, common.ArgLibraries):
		scope = append(scope, "the listed libraries")
	case has(common.ArgLibraries):
		scope = append(scope, "every library unless `"+common.ArgLibraries+"` is set")
	}
	if has("start") && has("end") {
		scope = append(scope, "optional time window")
	}
	return scope
}

func propertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func isRequired(tool mcp.Tool, name string) bool {
	for _, r := range tool.InputSchema.Required {
		if r == name {
			return true
		}
	}
	return false
}
