package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teemow/libfinder/internal/library"
)

// Argument names shared by the tools.
const (
	ArgDate      = "date"
	ArgLibraries = "libraries"
	ArgLibrary   = "library"
)

// StringArg returns a trimmed string argument, or "" when it is missing or not a string.
func StringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// OptionalStringArg is StringArg that distinguishes missing from empty.
func OptionalStringArg(args map[string]interface{}, key string) *string {
	s := StringArg(args, key)
	if s == "" {
		return nil
	}
	return &s
}

// IntArg returns a whole-number argument. JSON numbers arrive as float64; numeric
// strings are accepted too. Missing arguments yield def.
func IntArg(args map[string]interface{}, key string, def int) (int, error) {
	switch v := args[key].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// ListArg returns a list argument given either as a JSON array or as a
// comma-separated string. Numbers in arrays are rendered as integers.
func ListArg(args map[string]interface{}, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []interface{}:
		for _, item := range v {
			switch x := item.(type) {
			case string:
				raw = append(raw, x)
			case float64:
				raw = append(raw, strconv.FormatInt(int64(x), 10))
			}
		}
	case []string:
		raw = v
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ScopeFromArgs extracts the date and the library ids a tool call is about, for audit
// records. Selections that do not resolve are left out.
func ScopeFromArgs(args map[string]interface{}, dir *library.Directory) (string, []int) {
	date := StringArg(args, ArgDate)

	selections := ListArg(args, ArgLibraries)
	if s := StringArg(args, ArgLibrary); s != "" {
		selections = append(selections, s)
	}

	var ids []int
	for _, sel := range selections {
		libs, err := dir.Select([]string{sel})
		if err != nil {
			continue
		}
		for _, lib := range libs {
			ids = append(ids, lib.ID)
		}
	}
	return date, ids
}
