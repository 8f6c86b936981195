package confluence

import (
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MockClient is an in-memory implementation of API for tests.
type MockClient struct {
	Pages        map[string]*Page        // pageID -> page
	PagesByTitle map[string]*Page        // spaceKey:title -> page
	Histories    map[string]*History     // pageID -> history
	Attachments  map[string][]Attachment // pageID -> uploads

	CreateCalls []string // titles created (for assertions)
	UpdateCalls []string // page ids updated
	DeleteCalls []string // page ids deleted
	UploadCalls []string // attachment paths, in upload order
	Requests    int      // total API calls

	CreateErr    error
	UpdateErr    error
	DeleteErr    error
	SearchErr    error
	UploadErrFor map[string]error // attachment path -> injected failure

	CreateResult *Page // overrides the synthesized create response
	UpdateResult *Page // overrides the synthesized update response

	nextID int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Pages:        make(map[string]*Page),
		PagesByTitle: make(map[string]*Page),
		Histories:    make(map[string]*History),
		Attachments:  make(map[string][]Attachment),
		UploadErrFor: make(map[string]error),
		nextID:       1000,
	}
}

func (m *MockClient) key(spaceKey, title string) string { return spaceKey + ":" + title }

// AddPage registers an existing page so lookups and updates can find it.
func (m *MockClient) AddPage(pageID, spaceKey, title, body string, version int) *Page {
	p := &Page{ID: pageID, Type: "page", Title: title}
	p.Space.Key = spaceKey
	p.Body.Storage.Value = body
	p.Version.Number = version
	p.Links.Base = "https://wiki.example.com"
	p.Links.WebUI = "/display/" + spaceKey + "/" + title
	m.Pages[pageID] = p
	m.PagesByTitle[m.key(spaceKey, title)] = p
	return p
}

func (m *MockClient) CreateContent(spaceKey, title, ancestorID, body string) (*Page, error) {
	m.Requests++
	m.CreateCalls = append(m.CreateCalls, title)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResult != nil {
		m.Pages[m.CreateResult.ID] = m.CreateResult
		m.PagesByTitle[m.key(spaceKey, m.CreateResult.Title)] = m.CreateResult
		return m.CreateResult, nil
	}

	m.nextID++
	p := m.AddPage(strconv.Itoa(m.nextID), spaceKey, title, body, 1)
	return p, nil
}

func (m *MockClient) UpdateContent(pageID, title, body string, version int) (*Page, error) {
	m.Requests++
	m.UpdateCalls = append(m.UpdateCalls, pageID)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	p, ok := m.Pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	if m.UpdateResult != nil {
		return m.UpdateResult, nil
	}
	p.Title = title
	p.Body.Storage.Value = body
	p.Version.Number = version
	return p, nil
}

func (m *MockClient) DeleteContent(pageID string) error {
	m.Requests++
	m.DeleteCalls = append(m.DeleteCalls, pageID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	p, ok := m.Pages[pageID]
	if !ok {
		return notFound(pageID)
	}
	delete(m.Pages, pageID)
	delete(m.PagesByTitle, m.key(p.Space.Key, p.Title))
	return nil
}

func (m *MockClient) ContentByID(pageID string) (*Page, error) {
	m.Requests++
	p, ok := m.Pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	return p, nil
}

func (m *MockClient) ContentByTitle(spaceKey, title string) (*Page, error) {
	m.Requests++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if spaceKey != "" {
		return m.PagesByTitle[m.key(spaceKey, title)], nil
	}
	for _, id := range m.sortedPageIDs() {
		if m.Pages[id].Title == title {
			return m.Pages[id], nil
		}
	}
	return nil, nil
}

func (m *MockClient) SearchContent(spaceKey, fragment string) ([]Page, error) {
	m.Requests++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var matches []Page
	for _, id := range m.sortedPageIDs() {
		p := m.Pages[id]
		if spaceKey != "" && p.Space.Key != spaceKey {
			continue
		}
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(fragment)) {
			matches = append(matches, *p)
		}
	}
	return matches, nil
}

func (m *MockClient) ContentHistory(pageID string) (*History, error) {
	m.Requests++
	h, ok := m.Histories[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	return h, nil
}

func (m *MockClient) UploadAttachment(pageID, path string) (*Attachment, error) {
	m.Requests++
	m.UploadCalls = append(m.UploadCalls, path)
	if err := m.UploadErrFor[path]; err != nil {
		return nil, err
	}
	att := Attachment{ID: "att-" + filepath.Base(path), Title: filepath.Base(path)}
	m.Attachments[pageID] = append(m.Attachments[pageID], att)
	return &att, nil
}

func (m *MockClient) sortedPageIDs() []string {
	ids := make([]string, 0, len(m.Pages))
	for id := range m.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func notFound(pageID string) error {
	return &RemoteError{
		StatusCode: http.StatusNotFound,
		Reason:     "Not Found",
		Body:       "no content with id " + pageID,
	}
}

var _ API = (*MockClient)(nil)
