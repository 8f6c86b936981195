package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wikipen/internal/config"
	"wikipen/internal/confluence"
	"wikipen/internal/editor"
	"wikipen/internal/markup"
	"wikipen/pkg/logger"
)

// fakeHost records everything the syncer pushes at the editor surface.
type fakeHost struct {
	docs     []*editor.Document
	settings map[string][]byte
	clip     []string
	statuses []string
	errs     []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{settings: make(map[string][]byte)}
}

func (h *fakeHost) OpenDocument(doc *editor.Document) error {
	h.docs = append(h.docs, doc)
	return nil
}

func (h *fakeHost) Settings(name string) ([]byte, bool) {
	blob, ok := h.settings[name]
	return blob, ok
}

func (h *fakeHost) SetSettings(name string, blob []byte) error {
	h.settings[name] = blob
	return nil
}

func (h *fakeHost) SetClipboard(text string) error {
	h.clip = append(h.clip, text)
	return nil
}

func (h *fakeHost) Status(format string, args ...interface{}) {
	h.statuses = append(h.statuses, fmt.Sprintf(format, args...))
}

func (h *fakeHost) ErrorMessage(format string, args ...interface{}) {
	h.errs = append(h.errs, fmt.Sprintf(format, args...))
}

var _ editor.Host = (*fakeHost)(nil)

func newTestSyncer(t *testing.T) (*Syncer, *confluence.MockClient, *fakeHost) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Confluence.BaseURI = "https://wiki.example.com"
	cfg.Markup.RSTTool = "rst2html"

	client := confluence.NewMockClient()
	host := newFakeHost()
	return New(cfg, client, host, logger.New(false)), client, host
}

func storedRecord(t *testing.T, host *fakeHost, name string) *confluence.Page {
	t.Helper()
	blob, ok := host.settings[name]
	if !ok {
		t.Fatalf("Expected a stored record for '%s'", name)
	}
	var page confluence.Page
	if err := json.Unmarshal(blob, &page); err != nil {
		t.Fatalf("Expected record blob to be JSON, got %v", err)
	}
	return &page
}

const postSource = `Space: DOCS
Ancestor Title: Handbook
Title: Onboarding

# Onboarding

Welcome aboard.
`

func postDocument(dir string) *editor.Document {
	return &editor.Document{
		Name:   "onboarding.md",
		Path:   filepath.Join(dir, "onboarding.md"),
		Text:   postSource,
		Syntax: "Markdown",
	}
}

func TestPostCreatesPage(t *testing.T) {
	s, client, host := newTestSyncer(t)
	client.AddPage("10", "DOCS", "Handbook", "", 3)

	result, err := s.Post(postDocument(t.TempDir()))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}

	if len(client.CreateCalls) != 1 || client.CreateCalls[0] != "Onboarding" {
		t.Errorf("Expected one create for 'Onboarding', got %v", client.CreateCalls)
	}

	if result.Record == nil || result.Record.Title != "Onboarding" {
		t.Fatalf("Expected adopted record for 'Onboarding', got %+v", result.Record)
	}

	if !strings.HasPrefix(result.URL, "https://wiki.example.com/") {
		t.Errorf("Expected canonical URL, got '%s'", result.URL)
	}

	record := storedRecord(t, host, "onboarding.md")
	if record.ID != result.Record.ID {
		t.Errorf("Expected persisted record id '%s', got '%s'", result.Record.ID, record.ID)
	}
}

func TestPostMissingFrontMatterKeys(t *testing.T) {
	testCases := []struct {
		name    string
		source  string
		missing string
	}{
		{"no space", "Ancestor Title: Handbook\nTitle: Onboarding\n\nBody.\n", "Space"},
		{"no ancestor", "Space: DOCS\nTitle: Onboarding\n\nBody.\n", "Ancestor Title"},
		{"no title", "Space: DOCS\nAncestor Title: Handbook\n\nBody.\n", "Title"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, client, _ := newTestSyncer(t)

			doc := &editor.Document{Name: "doc.md", Text: tc.source, Syntax: "Markdown"}
			result, err := s.Post(doc)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if result.Outcome != PreconditionFailed {
				t.Fatalf("Expected PreconditionFailed, got %v", result.Outcome)
			}
			if !strings.Contains(result.Err.Error(), tc.missing) {
				t.Errorf("Expected message naming '%s', got '%v'", tc.missing, result.Err)
			}
			if client.Requests != 0 {
				t.Errorf("Expected no API calls, got %d", client.Requests)
			}
		})
	}
}

func TestPostAncestorNotFound(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	result, err := s.Post(postDocument(t.TempDir()))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != PreconditionFailed {
		t.Fatalf("Expected PreconditionFailed, got %v", result.Outcome)
	}
	if !strings.Contains(result.Err.Error(), "Handbook") {
		t.Errorf("Expected message naming the ancestor, got '%v'", result.Err)
	}
	if len(client.CreateCalls) != 0 {
		t.Errorf("Expected no create request, got %v", client.CreateCalls)
	}
}

func TestPostUnsupportedSyntaxIsLocalError(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	doc := postDocument(t.TempDir())
	doc.Syntax = "AsciiDoc"

	result, err := s.Post(doc)
	if err == nil {
		t.Fatal("Expected a conversion error")
	}
	if result != nil {
		t.Errorf("Expected nil result for a local failure, got %+v", result)
	}

	var unsupported *markup.UnsupportedSyntaxError
	if !errors.As(err, &unsupported) {
		t.Errorf("Expected UnsupportedSyntaxError, got %v", err)
	}
	if client.Requests != 0 {
		t.Errorf("Expected no API calls, got %d", client.Requests)
	}
}

func TestPostRemoteRejectionDumpsBody(t *testing.T) {
	s, client, _ := newTestSyncer(t)
	client.AddPage("10", "DOCS", "Handbook", "", 3)
	client.CreateErr = &confluence.RemoteError{StatusCode: http.StatusBadRequest, Reason: "Bad Request", Body: "broken macro"}

	result, err := s.Post(postDocument(t.TempDir()))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != RemoteRejected {
		t.Fatalf("Expected RemoteRejected, got %v", result.Outcome)
	}
	if _, ok := confluence.AsRemote(result.Err); !ok {
		t.Errorf("Expected a RemoteError, got %v", result.Err)
	}

	if result.DumpPath == "" {
		t.Fatal("Expected a diagnostics dump path")
	}
	defer os.Remove(result.DumpPath)

	dump, err := os.ReadFile(result.DumpPath)
	if err != nil {
		t.Fatalf("Expected readable dump, got %v", err)
	}
	if !strings.Contains(string(dump), "<p>") {
		t.Error("Expected dump to carry the rendered body")
	}
	if !strings.Contains(string(dump), "onboarding.md") {
		t.Error("Expected dump to name the source document")
	}
}

func TestPostUploadsManifestInOrder(t *testing.T) {
	s, client, _ := newTestSyncer(t)
	client.AddPage("10", "DOCS", "Handbook", "", 3)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	doc := postDocument(dir)
	doc.Text = "Space: DOCS\nAncestor Title: Handbook\nTitle: Onboarding\n\n![a](first.png)\n\n![b](second.png)\n"

	result, err := s.Post(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}

	if len(client.UploadCalls) != 2 || client.UploadCalls[0] != first || client.UploadCalls[1] != second {
		t.Errorf("Expected uploads in document order, got %v", client.UploadCalls)
	}
}

func TestPostPartialFailureStopsUploadsAndKeepsRecord(t *testing.T) {
	s, client, host := newTestSyncer(t)
	client.AddPage("10", "DOCS", "Handbook", "", 3)

	dir := t.TempDir()
	names := []string{"a.png", "b.png", "c.png"}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	client.UploadErrFor[paths[1]] = &confluence.RemoteError{StatusCode: http.StatusForbidden, Reason: "Forbidden"}

	doc := postDocument(dir)
	doc.Text = "Space: DOCS\nAncestor Title: Handbook\nTitle: Onboarding\n\n![a](a.png)\n![b](b.png)\n![c](c.png)\n"

	result, err := s.Post(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != PartialFailure {
		t.Fatalf("Expected PartialFailure, got %v", result.Outcome)
	}

	// The loop stops at the first failure
	if len(client.UploadCalls) != 2 {
		t.Errorf("Expected uploads to stop after the failure, got %v", client.UploadCalls)
	}

	var partial *PartialError
	if !errors.As(result.Err, &partial) {
		t.Fatalf("Expected PartialError, got %v", result.Err)
	}
	if partial.PageID != result.Record.ID {
		t.Errorf("Expected PartialError for page '%s', got '%s'", result.Record.ID, partial.PageID)
	}

	// The page exists remotely, so the record stays adopted
	record := storedRecord(t, host, "onboarding.md")
	if record.ID != result.Record.ID {
		t.Errorf("Expected record to stay bound, got '%s'", record.ID)
	}
}

func TestUpdateBoundSendsVersionPlusOne(t *testing.T) {
	s, client, host := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}

	doc := &editor.Document{Name: "notes.md", Text: "Title: Notes\n\nUpdated text.\n", Syntax: "Markdown"}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}
	if len(client.UpdateCalls) != 1 || client.UpdateCalls[0] != "77" {
		t.Errorf("Expected one update for page 77, got %v", client.UpdateCalls)
	}
	if result.Record.Version.Number != 4 {
		t.Errorf("Expected version 4, got %d", result.Record.Version.Number)
	}

	record := storedRecord(t, host, "notes.md")
	if record.Version.Number != 4 {
		t.Errorf("Expected persisted version 4, got %d", record.Version.Number)
	}
}

func TestUpdateAdoptsServerRecordWholesale(t *testing.T) {
	s, client, host := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}

	// The server reports a different version than local+1; the server wins
	server := &confluence.Page{ID: "77", Title: "Notes (moved)"}
	server.Version.Number = 9
	client.UpdateResult = server

	doc := &editor.Document{Name: "notes.md", Text: "Title: Notes\n\nUpdated text.\n", Syntax: "Markdown"}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Record.Version.Number != 9 {
		t.Errorf("Expected adopted version 9, got %d", result.Record.Version.Number)
	}

	record := storedRecord(t, host, "notes.md")
	if record.Version.Number != 9 || record.Title != "Notes (moved)" {
		t.Errorf("Expected the server record persisted wholesale, got %+v", record)
	}
}

func TestUpdateUnboundResolvesBySourceLookup(t *testing.T) {
	s, client, host := newTestSyncer(t)
	client.AddPage("88", "DOCS", "Notes", "<p>old</p>", 2)

	doc := &editor.Document{
		Name:   "notes.md",
		Text:   "Space: DOCS\nTitle: Notes\n\nUpdated text.\n",
		Syntax: "Markdown",
	}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}
	if result.Record.Version.Number != 3 {
		t.Errorf("Expected version 3, got %d", result.Record.Version.Number)
	}

	// The resolved page is now bound
	record := storedRecord(t, host, "notes.md")
	if record.ID != "88" {
		t.Errorf("Expected record bound to page 88, got '%s'", record.ID)
	}
}

func TestUpdateUnboundWithoutFrontMatter(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	doc := &editor.Document{Name: "notes.md", Text: "Just a body.\n", Syntax: "Markdown"}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != PreconditionFailed {
		t.Fatalf("Expected PreconditionFailed, got %v", result.Outcome)
	}
	if client.Requests != 0 {
		t.Errorf("Expected no API calls, got %d", client.Requests)
	}
}

func TestUpdateUnboundPageNotFound(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	doc := &editor.Document{
		Name:   "notes.md",
		Text:   "Space: DOCS\nTitle: Notes\n\nUpdated text.\n",
		Syntax: "Markdown",
	}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != PreconditionFailed {
		t.Fatalf("Expected PreconditionFailed, got %v", result.Outcome)
	}
	if len(client.UpdateCalls) != 0 {
		t.Errorf("Expected no update request, got %v", client.UpdateCalls)
	}
}

func TestUpdateStorageKindPassesRawBody(t *testing.T) {
	s, client, _ := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 1)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}

	raw := `<p>edited &amp; kept <ac:structured-macro ac:name="toc"/></p>`
	doc := &editor.Document{Name: "notes.md", Text: raw, Syntax: "Storage"}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}
	if got := client.Pages["77"].Body.Storage.Value; got != raw {
		t.Errorf("Expected raw body sent unchanged, got '%s'", got)
	}
	if got := client.Pages["77"].Title; got != "Notes" {
		t.Errorf("Expected recorded title kept, got '%s'", got)
	}
	if len(client.UploadCalls) != 0 {
		t.Errorf("Expected no uploads for a raw body, got %v", client.UploadCalls)
	}
}

func TestUpdateRejectionLeavesRecordUntouched(t *testing.T) {
	s, client, host := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}
	client.UpdateErr = &confluence.RemoteError{StatusCode: http.StatusConflict, Reason: "Conflict", Body: "version mismatch"}

	doc := &editor.Document{Name: "notes.md", Text: "Title: Notes\n\nUpdated text.\n", Syntax: "Markdown"}

	result, err := s.Update(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != RemoteRejected {
		t.Fatalf("Expected RemoteRejected, got %v", result.Outcome)
	}
	if result.DumpPath == "" {
		t.Error("Expected a diagnostics dump path")
	} else {
		os.Remove(result.DumpPath)
	}

	record := storedRecord(t, host, "notes.md")
	if record.Version.Number != 3 {
		t.Errorf("Expected local record still at version 3, got %d", record.Version.Number)
	}
}

func TestDeleteRequiresBinding(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	doc := &editor.Document{Name: "notes.md", Text: "Title: Notes\n\nBody.\n", Syntax: "Markdown"}

	result, err := s.Delete(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != PreconditionFailed {
		t.Fatalf("Expected PreconditionFailed, got %v", result.Outcome)
	}
	if client.Requests != 0 {
		t.Errorf("Expected no API calls, got %d", client.Requests)
	}
}

func TestDeleteKeepsLocalRecord(t *testing.T) {
	s, client, host := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}

	doc := &editor.Document{Name: "notes.md"}

	result, err := s.Delete(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != Succeeded {
		t.Fatalf("Expected Succeeded, got %v (%v)", result.Outcome, result.Err)
	}
	if len(client.DeleteCalls) != 1 || client.DeleteCalls[0] != "77" {
		t.Errorf("Expected one delete for page 77, got %v", client.DeleteCalls)
	}

	// Only the remote page goes away; the record survives locally
	if _, ok := host.settings["notes.md"]; !ok {
		t.Error("Expected local record to survive the delete")
	}
}

func TestDeleteRejectionLeavesLocalState(t *testing.T) {
	s, client, host := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}
	client.DeleteErr = &confluence.RemoteError{StatusCode: http.StatusForbidden, Reason: "Forbidden"}

	doc := &editor.Document{Name: "notes.md"}

	result, err := s.Delete(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != RemoteRejected {
		t.Fatalf("Expected RemoteRejected, got %v", result.Outcome)
	}

	record := storedRecord(t, host, "notes.md")
	if record.ID != "77" {
		t.Errorf("Expected record unchanged, got '%s'", record.ID)
	}
}

func TestHistory(t *testing.T) {
	s, client, _ := newTestSyncer(t)
	page := client.AddPage("77", "DOCS", "Notes", "<p>old</p>", 3)
	if err := s.Bind("notes.md", page); err != nil {
		t.Fatal(err)
	}

	history := &confluence.History{}
	history.CreatedBy.DisplayName = "First Author"
	history.LastUpdated.Number = 3
	client.Histories["77"] = history

	got, err := s.History(&editor.Document{Name: "notes.md"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.CreatedBy.DisplayName != "First Author" {
		t.Errorf("Expected creator 'First Author', got '%s'", got.CreatedBy.DisplayName)
	}
}

func TestHistoryRequiresBinding(t *testing.T) {
	s, _, _ := newTestSyncer(t)

	_, err := s.History(&editor.Document{Name: "notes.md"})
	if err == nil {
		t.Fatal("Expected an error for an unbound document")
	}

	var precondition *PreconditionError
	if !errors.As(err, &precondition) {
		t.Errorf("Expected PreconditionError, got %v", err)
	}
}

func TestUploadResourcesEmptyManifest(t *testing.T) {
	s, client, _ := newTestSyncer(t)

	if err := s.uploadResources("77", nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if client.Requests != 0 {
		t.Errorf("Expected no API calls for an empty manifest, got %d", client.Requests)
	}
}

func TestCanonicalURL(t *testing.T) {
	var page confluence.Page
	page.Links.Base = "https://wiki.example.com"
	page.Links.WebUI = "/display/DOCS/Notes"

	url, err := CanonicalURL(&page)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if url != "https://wiki.example.com/display/DOCS/Notes" {
		t.Errorf("Expected joined URL, got '%s'", url)
	}

	var noBase confluence.Page
	noBase.Links.WebUI = "/display/DOCS/Notes"
	if _, err := CanonicalURL(&noBase); err == nil {
		t.Error("Expected error for a missing base link")
	}

	var noWebUI confluence.Page
	noWebUI.Links.Base = "https://wiki.example.com"
	if _, err := CanonicalURL(&noWebUI); err == nil {
		t.Error("Expected error for a missing webui link")
	}

	if _, err := CanonicalURL(nil); err == nil {
		t.Error("Expected error for a nil page")
	}
}
