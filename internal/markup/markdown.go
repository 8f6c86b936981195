package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// engine is shared by all conversions. XHTML output keeps void elements
// well-formed for the storage format, and raw HTML passthrough lets authors
// embed storage macros directly in their documents.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, storageMacros{}),
	goldmark.WithRendererOptions(
		ghtml.WithXHTML(),
		ghtml.WithUnsafe(),
	),
)

func (c *Converter) markdownToHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// storageMacros swaps goldmark's code block output for the storage code
// macro.
type storageMacros struct{}

func (storageMacros) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeMacroRenderer{}, 200),
	))
}

type codeMacroRenderer struct{}

var _ renderer.NodeRenderer = (*codeMacroRenderer)(nil)

func (r *codeMacroRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderCode)
	reg.Register(ast.KindCodeBlock, r.renderCode)
}

func (r *codeMacroRenderer) renderCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	language := ""
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		language = string(fenced.Language(source))
	}

	_, _ = w.WriteString("<" + NSAc + "structured-macro " + NSAc + `name="code" ` + NSAc + `schema-version="1">`)
	if language != "" {
		_, _ = w.WriteString("<" + NSAc + "parameter " + NSAc + `name="language">` + escapeMacroText(language) + "</" + NSAc + "parameter>")
	}

	// The macro body is entity-escaped text rather than CDATA: HTML parsers
	// downstream do not preserve CDATA sections, and escaped text carries
	// the same character data.
	_, _ = w.WriteString("<" + NSAc + "plain-text-body>")
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		_, _ = w.WriteString(escapeMacroText(string(segment.Value(source))))
	}
	_, _ = w.WriteString("</" + NSAc + "plain-text-body></" + NSAc + "structured-macro>\n")

	return ast.WalkContinue, nil
}

var macroTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeMacroText(s string) string {
	return macroTextEscaper.Replace(s)
}
