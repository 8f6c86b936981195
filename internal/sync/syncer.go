package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"wikipen/internal/config"
	"wikipen/internal/confluence"
	"wikipen/internal/editor"
	"wikipen/internal/frontmatter"
	"wikipen/internal/markup"
	"wikipen/internal/rewrite"
	"wikipen/pkg/logger"
)

// Syncer drives page operations between a local document and the wiki.
// Operations return (*Result, error): the error covers local failures before
// any request goes out, the Result covers everything that reached the wiki.
type Syncer struct {
	cfg    *config.Config
	client confluence.API
	conv   *markup.Converter
	rw     *rewrite.Rewriter
	host   editor.Host
	logger *logger.Logger
}

func New(cfg *config.Config, client confluence.API, host editor.Host, log *logger.Logger) *Syncer {
	caps := markup.DetectCapabilities(cfg.Markup.RSTTool)

	return &Syncer{
		cfg:    cfg,
		client: client,
		conv:   markup.NewConverter(caps),
		rw:     rewrite.New(!cfg.Markup.DisableRewrite, log),
		host:   host,
		logger: log,
	}
}

// Post creates a new page from a source document. The front matter must name
// the space, the ancestor page, and the title.
func (s *Syncer) Post(doc *editor.Document) (*Result, error) {
	meta, body, err := frontmatter.Parse(doc.Text)
	if err != nil {
		return nil, err
	}
	if meta.SpaceKey == "" {
		return preconditionFailed("front matter names no Space"), nil
	}
	if meta.AncestorTitle == "" {
		return preconditionFailed("front matter names no Ancestor Title"), nil
	}
	if meta.Title == "" {
		return preconditionFailed("front matter names no Title"), nil
	}

	storage, manifest, err := s.renderStorage(body, doc)
	if err != nil {
		return nil, err
	}

	ancestor, err := s.client.ContentByTitle(meta.SpaceKey, meta.AncestorTitle)
	if err != nil {
		return &Result{Outcome: RemoteRejected, Err: err}, nil
	}
	if ancestor == nil {
		return preconditionFailed("ancestor page '%s' not found in space '%s'", meta.AncestorTitle, meta.SpaceKey), nil
	}

	s.logger.Info("Creating page '%s' under '%s' in space %s", meta.Title, meta.AncestorTitle, meta.SpaceKey)

	page, err := s.client.CreateContent(meta.SpaceKey, meta.Title, ancestor.ID, storage)
	if err != nil {
		return &Result{Outcome: RemoteRejected, Err: err, DumpPath: s.dumpRejected(doc, storage)}, nil
	}

	return s.adopt(doc, page, manifest), nil
}

// Update pushes an edited document back to its page. A bound record wins;
// without one the page is resolved from the front matter.
func (s *Syncer) Update(doc *editor.Document) (*Result, error) {
	if record := s.loadRecord(doc.Name); record != nil {
		return s.updateBound(doc, record)
	}
	return s.updateBySourceLookup(doc)
}

func (s *Syncer) updateBySourceLookup(doc *editor.Document) (*Result, error) {
	meta, _, err := frontmatter.Parse(doc.Text)
	if err != nil {
		return nil, err
	}
	if meta.SpaceKey == "" || meta.Title == "" {
		return preconditionFailed("document '%s' is not bound to a page and its front matter names no Space and Title to resolve", doc.Name), nil
	}

	found, err := s.client.ContentByTitle(meta.SpaceKey, meta.Title)
	if err != nil {
		return &Result{Outcome: RemoteRejected, Err: err}, nil
	}
	if found == nil {
		return preconditionFailed("page '%s' not found in space '%s'", meta.Title, meta.SpaceKey), nil
	}

	// The search result is shallow; fetch the full record for its version
	record, err := s.client.ContentByID(found.ID)
	if err != nil {
		return &Result{Outcome: RemoteRejected, Err: err}, nil
	}

	return s.updateBound(doc, record)
}

func (s *Syncer) updateBound(doc *editor.Document, record *confluence.Page) (*Result, error) {
	title := record.Title
	storage := doc.Text
	var manifest []rewrite.Resource

	// Storage documents go through raw; markup documents are re-rendered
	if markup.KindForSyntax(doc.Syntax) != markup.Storage {
		meta, body, err := frontmatter.Parse(doc.Text)
		if err != nil {
			return nil, err
		}
		if meta.Title != "" {
			title = meta.Title
		}
		storage, manifest, err = s.renderStorage(body, doc)
		if err != nil {
			return nil, err
		}
	}

	version := record.Version.Number + 1
	s.logger.Info("Updating page '%s' to version %d", title, version)

	page, err := s.client.UpdateContent(record.ID, title, storage, version)
	if err != nil {
		return &Result{Outcome: RemoteRejected, Err: err, DumpPath: s.dumpRejected(doc, storage)}, nil
	}

	return s.adopt(doc, page, manifest), nil
}

// Delete removes the bound page from the wiki. The local record survives:
// records are only ever deleted remotely.
func (s *Syncer) Delete(doc *editor.Document) (*Result, error) {
	record := s.loadRecord(doc.Name)
	if record == nil {
		return preconditionFailed("document '%s' is not bound to a page", doc.Name), nil
	}

	s.logger.Info("Deleting page '%s' (%s)", record.Title, record.ID)

	if err := s.client.DeleteContent(record.ID); err != nil {
		return &Result{Outcome: RemoteRejected, Err: err}, nil
	}

	return &Result{Outcome: Succeeded, Record: record}, nil
}

// History fetches the bound page's creation and update records.
func (s *Syncer) History(doc *editor.Document) (*confluence.History, error) {
	record := s.loadRecord(doc.Name)
	if record == nil {
		return nil, &PreconditionError{Msg: fmt.Sprintf("document '%s' is not bound to a page", doc.Name)}
	}
	return s.client.ContentHistory(record.ID)
}

// Bind persists a page record for a document, making the document BOUND for
// later update and delete operations.
func (s *Syncer) Bind(name string, page *confluence.Page) error {
	return s.bindRecord(name, page)
}

// adopt takes the server's returned record as the new local truth, then
// uploads the manifest. The record stays adopted even when an upload fails:
// the page exists remotely in exactly that state.
func (s *Syncer) adopt(doc *editor.Document, page *confluence.Page, manifest []rewrite.Resource) *Result {
	result := &Result{Outcome: Succeeded, Record: page}
	if url, err := CanonicalURL(page); err == nil {
		result.URL = url
	}

	if err := s.bindRecord(doc.Name, page); err != nil {
		s.logger.Error("Page %s written but its record was not persisted: %v", page.ID, err)
	}

	if err := s.uploadResources(page.ID, manifest); err != nil {
		result.Outcome = PartialFailure
		result.Err = &PartialError{PageID: page.ID, Err: err}
	}

	return result
}

func (s *Syncer) renderStorage(body string, doc *editor.Document) (string, []rewrite.Resource, error) {
	html, err := s.conv.ToHTML(body, doc.Syntax)
	if err != nil {
		return "", nil, err
	}
	return s.rw.Rewrite(html, doc.Path)
}

func (s *Syncer) bindRecord(name string, page *confluence.Page) error {
	blob, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page record: %w", err)
	}
	if err := s.host.SetSettings(name, blob); err != nil {
		return fmt.Errorf("failed to persist page record: %w", err)
	}
	return nil
}

func (s *Syncer) loadRecord(name string) *confluence.Page {
	blob, ok := s.host.Settings(name)
	if !ok {
		return nil
	}

	var page confluence.Page
	if err := json.Unmarshal(blob, &page); err != nil {
		s.logger.Warn("Ignoring unreadable page record for '%s': %v", name, err)
		return nil
	}
	if page.ID == "" {
		return nil
	}
	return &page
}

// dumpRejected writes the body the server refused, plus the source it came
// from, to a temp file for inspection.
func (s *Syncer) dumpRejected(doc *editor.Document, storage string) string {
	f, err := os.CreateTemp("", "wikipen-rejected-*.xml")
	if err != nil {
		s.logger.Warn("Could not write diagnostics dump: %v", err)
		return ""
	}
	defer f.Close()

	fmt.Fprintf(f, "%s\n\n<!-- source document: %s -->\n%s", storage, doc.Name, doc.Text)

	s.logger.Info("Rejected body dumped to %s", f.Name())
	return f.Name()
}
