// Package frontmatter splits a document into its page header and body.
//
// Two header styles are accepted: the line format used by posted documents
// (`Space:`, `Ancestor Title:` and `Title:` lines up to the first blank
// line), and a fenced YAML block for documents that already carry one.
package frontmatter

import (
	"fmt"
	"strings"

	adrg "github.com/adrg/frontmatter"
)

// Meta holds the page header fields. Absent keys are empty strings; callers
// must check before use.
type Meta struct {
	SpaceKey      string
	AncestorTitle string
	Title         string
}

// Split scans lines until the first blank (or whitespace-only) line. Lines
// matching one of the three known prefixes, case-insensitively, contribute a
// field; anything else in the header is ignored. The value is the remainder
// after the first colon with leading spaces trimmed. Everything after the
// blank line is the body; a document with no blank line is all header.
func Split(text string) (Meta, []string) {
	var meta Meta
	var body []string

	lines := splitLines(text)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			body = lines[i+1:]
			break
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "space:"):
			meta.SpaceKey = valueAfterColon(line)
		case strings.HasPrefix(lower, "ancestor title:"):
			meta.AncestorTitle = valueAfterColon(line)
		case strings.HasPrefix(lower, "title:"):
			meta.Title = valueAfterColon(line)
		}
	}

	return meta, body
}

// Parse is the front door for the synchronizer: it dispatches on the header
// style and returns the body as a single string.
func Parse(text string) (Meta, string, error) {
	if hasYAMLHeader(text) {
		return parseYAML(text)
	}
	meta, body := Split(text)
	return meta, strings.Join(body, "\n"), nil
}

func parseYAML(text string) (Meta, string, error) {
	var raw struct {
		Space         string `yaml:"space"`
		SpaceKey      string `yaml:"space_key"`
		Ancestor      string `yaml:"ancestor"`
		AncestorTitle string `yaml:"ancestor_title"`
		Title         string `yaml:"title"`
	}

	rest, err := adrg.Parse(strings.NewReader(text), &raw)
	if err != nil {
		return Meta{}, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	meta := Meta{
		SpaceKey:      firstNonEmpty(raw.SpaceKey, raw.Space),
		AncestorTitle: firstNonEmpty(raw.AncestorTitle, raw.Ancestor),
		Title:         raw.Title,
	}
	return meta, string(rest), nil
}

func hasYAMLHeader(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.TrimRight(first, "\r") == "---"
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

func valueAfterColon(line string) string {
	_, rest, _ := strings.Cut(line, ":")
	return strings.TrimLeft(rest, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
