package commands

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/AlecAivazis/survey/v2"

	"wikipen/internal/confluence"
	"wikipen/internal/editor"
	"wikipen/pkg/logger"
)

// minimal config yaml for commands requiring config
const testConfigYAML = `confluence:
  base_uri: https://wiki.example.com
  username: editor
  password: secret
markup:
  rst_tool: rst2html
`

func writeTempConfig(t *testing.T) string {
	f, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp config: %v", err)
	}
	if _, err := f.WriteString(testConfigYAML); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close cfg: %v", err)
	}
	return f.Name()
}

// helper to temporarily override the client factory
func withMockClient(t *testing.T, mc *confluence.MockClient, fn func()) {
	t.Helper()
	orig := newWikiClient
	newWikiClient = func(baseURI, username, password string, log *logger.Logger) confluence.API { return mc }
	defer func() { newWikiClient = orig }()
	fn()
}

// withAnswers scripts the interactive prompts: each queued value answers one
// prompt, matched by the response type survey would write into. A queued
// error is returned as the prompt failure.
func withAnswers(t *testing.T, answers []interface{}, fn func()) {
	t.Helper()
	orig := askOne
	next := 0
	askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		if next >= len(answers) {
			t.Fatalf("unexpected prompt %#v after %d scripted answers", p, len(answers))
		}
		value := answers[next]
		next++

		if err, ok := value.(error); ok {
			return err
		}
		switch r := response.(type) {
		case *string:
			r2, ok := value.(string)
			if !ok {
				t.Fatalf("prompt wants a string, scripted answer is %#v", value)
			}
			*r = r2
		case *int:
			r2, ok := value.(int)
			if !ok {
				t.Fatalf("prompt wants an int, scripted answer is %#v", value)
			}
			*r = r2
		case *bool:
			r2, ok := value.(bool)
			if !ok {
				t.Fatalf("prompt wants a bool, scripted answer is %#v", value)
			}
			*r = r2
		default:
			t.Fatalf("unsupported response type %T", response)
		}
		return nil
	}
	defer func() { askOne = orig }()
	fn()
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig
	data, _ := io.ReadAll(r)
	return string(data)
}

// seedRecord persists a page binding for a document name the way the
// terminal host does.
func seedRecord(t *testing.T, dir, name string, page *confluence.Page) {
	t.Helper()
	blob, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	store := editor.NewRecordStore(dir)
	store.Set(name, blob)
	if err := store.Save(); err != nil {
		t.Fatalf("save record store: %v", err)
	}
}

func testRecord(id, spaceKey, title string, version int) *confluence.Page {
	p := &confluence.Page{ID: id, Type: "page", Title: title}
	p.Space.Key = spaceKey
	p.Version.Number = version
	return p
}

func readRecords(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(dir + "/.wikipen/records.json")
	if err != nil {
		t.Fatalf("read record store: %v", err)
	}
	return string(data)
}
