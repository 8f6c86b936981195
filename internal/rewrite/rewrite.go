// Package rewrite turns converted HTML into a storage-format body: image
// elements become attachment macros backed by a resource manifest, and the
// macro namespace placeholders are resolved during serialization.
package rewrite

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"wikipen/internal/markup"
	"wikipen/pkg/logger"
)

// Resource is one local file the rewritten body references. Manifest order
// follows document order.
type Resource struct {
	Filename string // attachment name, the base name of the file
	FullPath string // resolved local path to upload from
}

// maxImageWidth caps the rendered width of image macros.
const maxImageWidth = 500

const tocMacro = "<" + markup.NSAc + "structured-macro " + markup.NSAc + `name="toc" ` + markup.NSAc + `schema-version="1"/>`

type Rewriter struct {
	enabled bool
	logger  *logger.Logger
}

// New creates a rewriter. With enabled false, Rewrite passes bodies through
// untouched.
func New(enabled bool, log *logger.Logger) *Rewriter {
	return &Rewriter{
		enabled: enabled,
		logger:  log,
	}
}

// Rewrite replaces every img element with an image macro, collecting a
// manifest entry for each image whose file exists locally. Relative sources
// are resolved against the directory of sourcePath. After serialization,
// exactly three whole-document substitutions run, in order: the literal
// [TOC] marker becomes the TOC macro, then the two namespace placeholders
// become the vendor prefixes.
func (r *Rewriter) Rewrite(body, sourcePath string) (string, []Resource, error) {
	if !r.enabled {
		return body, nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse body: %w", err)
	}

	var manifest []Resource
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		macro, resource := r.imageMacro(src, sourcePath)
		if resource != nil {
			manifest = append(manifest, *resource)
		}
		sel.ReplaceWithNodes(macro)
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize body: %w", err)
	}

	return applySubstitutions(out), manifest, nil
}

// imageMacro builds the replacement element for one img. A remote source
// keeps its URL as the reference; a local source gets an attachment
// reference plus a manifest entry when the file exists. A missing file still
// produces the macro, just without a reference.
func (r *Rewriter) imageMacro(src, sourcePath string) (*html.Node, *Resource) {
	macro := &html.Node{
		Type: html.ElementNode,
		Data: markup.NSAc + "image",
		Attr: []html.Attribute{
			{Key: markup.NSAc + "align", Val: "center"},
		},
	}

	if isRemote(src) {
		macro.Attr = append(macro.Attr, html.Attribute{
			Key: markup.NSAc + "width", Val: strconv.Itoa(maxImageWidth),
		})
		macro.AppendChild(&html.Node{
			Type: html.ElementNode,
			Data: markup.NSRi + "url",
			Attr: []html.Attribute{{Key: markup.NSRi + "value", Val: src}},
		})
		return macro, nil
	}

	local := resolveLocal(src, sourcePath)
	macro.Attr = append(macro.Attr, html.Attribute{
		Key: markup.NSAc + "width", Val: strconv.Itoa(displayWidth(local)),
	})

	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() {
		if r.logger != nil {
			r.logger.Warn("image file not found: %s", local)
		}
		return macro, nil
	}

	macro.AppendChild(&html.Node{
		Type: html.ElementNode,
		Data: markup.NSRi + "attachment",
		Attr: []html.Attribute{{Key: markup.NSRi + "filename", Val: filepath.Base(local)}},
	})
	return macro, &Resource{
		Filename: filepath.Base(local),
		FullPath: local,
	}
}

// resolveLocal decodes the space encoding an editor preview leaves in
// sources and resolves relative paths against the document's directory.
func resolveLocal(src, sourcePath string) string {
	path := strings.ReplaceAll(src, "%20", " ")
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(sourcePath), path)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "//")
}

// displayWidth reads just the image header. Decodable images narrower than
// the cap keep their intrinsic width.
func displayWidth(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return maxImageWidth
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil || cfg.Width <= 0 || cfg.Width > maxImageWidth {
		return maxImageWidth
	}
	return cfg.Width
}

func applySubstitutions(out string) string {
	out = strings.ReplaceAll(out, "[TOC]", tocMacro)
	out = strings.ReplaceAll(out, markup.NSAc, "ac:")
	out = strings.ReplaceAll(out, markup.NSRi, "ri:")
	return out
}
