package confluence

// API defines the wiki operations page syncing depends on.
type API interface {
	CreateContent(spaceKey, title, ancestorID, body string) (*Page, error)
	UpdateContent(pageID, title, body string, version int) (*Page, error)
	DeleteContent(pageID string) error
	ContentByID(pageID string) (*Page, error)
	ContentByTitle(spaceKey, title string) (*Page, error)
	SearchContent(spaceKey, fragment string) ([]Page, error)
	ContentHistory(pageID string) (*History, error)
	UploadAttachment(pageID, path string) (*Attachment, error)
}

// Ensure Client implements the interface
var _ API = (*Client)(nil)
