package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"wikipen/pkg/logger"
)

// clipboardTools are probed in order; the first one present on PATH wins.
var clipboardTools = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
}

// TerminalHost adapts the Host surface to a shell session: documents are
// files, settings live in a sidecar record store, and messages go through
// the logger.
type TerminalHost struct {
	store  *RecordStore
	logger *logger.Logger
}

func NewTerminalHost(documentDir string, log *logger.Logger) (*TerminalHost, error) {
	store := NewRecordStore(documentDir)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return &TerminalHost{store: store, logger: log}, nil
}

func (h *TerminalHost) OpenDocument(doc *Document) error {
	if doc.Path == "" {
		return fmt.Errorf("document '%s' has no path to write to", doc.Name)
	}
	if err := os.WriteFile(doc.Path, []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (h *TerminalHost) Settings(name string) ([]byte, bool) {
	return h.store.Get(name)
}

func (h *TerminalHost) SetSettings(name string, blob []byte) error {
	h.store.Set(name, blob)
	return h.store.Save()
}

func (h *TerminalHost) SetClipboard(text string) error {
	for _, tool := range clipboardTools {
		path, err := exec.LookPath(tool[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", tool[0], err)
		}
		return nil
	}

	// No clipboard tool found; print instead.
	fmt.Println(text)
	return nil
}

func (h *TerminalHost) Status(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Info(format, args...)
	}
}

func (h *TerminalHost) ErrorMessage(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Error(format, args...)
	}
}

var _ Host = (*TerminalHost)(nil)
