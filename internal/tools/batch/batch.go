package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Item statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

// Result is the outcome of one item of a batch.
type Result struct {
	Item   string `json:"item"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that is either a string, possibly comma
// separated or a JSON array, or an array of strings. Blank entries are dropped; an
// empty result is an error.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		var arr []string
		if strings.HasPrefix(strings.TrimSpace(v), "[") && json.Unmarshal([]byte(v), &arr) == nil {
			return ParseStringOrArray(arr, paramName)
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	case []interface{}:
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str = strings.TrimSpace(str); str != "" {
				result = append(result, str)
			}
		}
	case []string:
		for _, str := range v {
			if str = strings.TrimSpace(str); str != "" {
				result = append(result, str)
			}
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return result, nil
}

// Process runs fn on each item in order. Errors for which fatal reports false are
// recorded as skipped; the first fatal error stops the batch and is returned.
// Cancellation of ctx is fatal.
func Process(ctx context.Context, items []string, fn func(ctx context.Context, item string) (string, error), fatal func(error) bool) ([]Result, error) {
	results := make([]Result, 0, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := fn(ctx, item)
		switch {
		case err == nil:
			results = append(results, NewSuccessResult(item, out))
		case fatal != nil && fatal(err):
			return nil, fmt.Errorf("%s: %w", item, err)
		default:
			results = append(results, NewSkippedResult(item, err))
		}
	}

	return results, nil
}

// Summarize counts the results by status.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusOK {
			s.Succeeded++
		} else {
			s.Skipped++
		}
	}
	return s
}

// FormatResults renders the summary of results as indented JSON.
func FormatResults(results []Result) (string, error) {
	data, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch results: %w", err)
	}
	return string(data), nil
}

// NewSuccessResult creates a success result
func NewSuccessResult(item, output string) Result {
	return Result{
		Item:   item,
		Status: StatusOK,
		Output: output,
	}
}

// NewSkippedResult creates a result for an item that was skipped because of err
func NewSkippedResult(item string, err error) Result {
	return Result{
		Item:   item,
		Status: StatusSkipped,
		Reason: err.Error(),
	}
}
