package editor

// Document is the unit of text a host edits: a name used for record keying,
// an optional path on disk, the text itself, and the syntax it is written in.
type Document struct {
	Name   string
	Path   string
	Text   string
	Syntax string
}

// Host is the editor surface the synchronizer talks back to. Settings blobs
// are opaque to the host; the synchronizer decides what goes in them.
type Host interface {
	OpenDocument(doc *Document) error
	Settings(name string) ([]byte, bool)
	SetSettings(name string, blob []byte) error
	SetClipboard(text string) error
	Status(format string, args ...interface{})
	ErrorMessage(format string, args ...interface{})
}
