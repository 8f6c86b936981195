// Package markup converts editor documents to wiki storage format.
//
// Syntax tags arrive as free-form strings (often full syntax-definition
// paths); they are reduced to a base name and mapped onto a closed set of
// kinds. Each supported kind carries exactly one converter.
package markup

import (
	"path/filepath"
	"strings"
)

// Kind identifies a markup family. The zero value is Unknown.
type Kind int

const (
	Unknown Kind = iota
	Markdown
	ReStructuredText
	// Storage marks documents that already hold wiki storage XML. They are
	// pushed raw and never pass through ToHTML.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Markdown:
		return "Markdown"
	case ReStructuredText:
		return "reStructuredText"
	case Storage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// Converter turns document content into storage-format HTML. It is stateless
// apart from the capability set resolved at startup: identical inputs produce
// identical outputs.
type Converter struct {
	caps Capabilities
}

func NewConverter(caps Capabilities) *Converter {
	return &Converter{caps: caps}
}

// ToHTML dispatches on the reduced syntax tag. Unknown tags and storage
// documents are not convertible; a conversion that yields only whitespace is
// reported as an empty document.
func (c *Converter) ToHTML(content, syntax string) (string, error) {
	var body string
	var err error

	switch KindForSyntax(syntax) {
	case Markdown:
		body, err = c.markdownToHTML(content)
	case ReStructuredText:
		body, err = c.rstToHTML(content)
	default:
		return "", &UnsupportedSyntaxError{Syntax: reduceSyntax(syntax)}
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(body) == "" {
		return "", &EmptyDocumentError{}
	}
	return body, nil
}

// KindForSyntax reduces the syntax tag and matches it against the known
// aliases, case-insensitively.
func KindForSyntax(syntax string) Kind {
	name := reduceSyntax(syntax)
	switch {
	case equalsAny(name, "Markdown", "Markdown Extended", "MultiMarkdown"):
		return Markdown
	case equalsAny(name, "reStructuredText", "reST"):
		return ReStructuredText
	case equalsAny(name, "HTML", "Storage", "XML"):
		return Storage
	default:
		return Unknown
	}
}

// KindForPath infers a kind from a file extension, for hosts that have a
// file name instead of a syntax tag.
func KindForPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return Markdown
	case ".rst", ".rest":
		return ReStructuredText
	case ".html", ".xml":
		return Storage
	default:
		return Unknown
	}
}

// reduceSyntax strips everything from the first dot, then keeps the last
// path element: "Packages/Markdown/Markdown Extended.sublime-syntax"
// reduces to "Markdown Extended".
func reduceSyntax(syntax string) string {
	base, _, _ := strings.Cut(syntax, ".")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return base
}

func equalsAny(name string, aliases ...string) bool {
	for _, alias := range aliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}
