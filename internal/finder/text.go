package finder

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const (
	// DefaultMaxLength is the description length used when none is given.
	DefaultMaxLength = 77

	// TruncationMarker is appended to truncated text.
	TruncationMarker = "<...>"
)

// blockTags separate words when markup is removed.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"tr": true, "td": true, "th": true, "table": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true, "hr": true,
}

// StripMarkup removes HTML tags and decodes entities, keeping only text.
// Script and style contents are dropped. Input that is not markup passes through.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// An unterminated tag ends at EOF with its text still in Raw;
			// keep it as-is
			if z.Err() != io.EOF || skip == 0 {
				sb.Write(z.Raw())
			}
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
		}
	}
}

// collapseWhitespace joins lines and squeezes whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate collapses whitespace and shortens text to at most maxLength characters,
// cutting at the last space inside the limit and appending TruncationMarker.
// Text without a space in the first maxLength characters is cut hard.
// A maxLength of zero or less selects DefaultMaxLength.
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	text = collapseWhitespace(text)
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	prefix := string(runes[:maxLength])
	if i := strings.LastIndex(prefix, " "); i != -1 {
		prefix = prefix[:i]
	}
	return prefix + TruncationMarker
}

// NormalizeText strips markup and truncates the result for display.
func NormalizeText(s string, maxLength int) string {
	return Truncate(StripMarkup(s), maxLength)
}
