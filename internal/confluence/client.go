package confluence

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wikipen/pkg/logger"
)

// Client talks to the Confluence REST API with basic authentication.
type Client struct {
	baseURI  string
	username string
	password string
	client   *http.Client
	logger   *logger.Logger
}

// Page mirrors the wiki's content representation. Only the fields the
// client reads are mapped.
type Page struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body,omitempty"`
	Space struct {
		Key string `json:"key"`
	} `json:"space,omitempty"`
	Version struct {
		Number int `json:"number"`
	} `json:"version,omitempty"`
	Links struct {
		WebUI string `json:"webui"`
		Base  string `json:"base"`
	} `json:"_links,omitempty"`
}

// WebURL joins the base link and the webui path into a browsable URL.
func (p *Page) WebURL() string {
	if p.Links.WebUI == "" {
		return p.Links.Base
	}
	if p.Links.Base == "" {
		return p.Links.WebUI
	}
	return strings.TrimSuffix(p.Links.Base, "/") + p.Links.WebUI
}

// History carries the creation and last-update records of a page.
type History struct {
	Latest    bool `json:"latest"`
	CreatedBy struct {
		DisplayName string `json:"displayName"`
	} `json:"createdBy"`
	CreatedDate string `json:"createdDate"`
	LastUpdated struct {
		By struct {
			DisplayName string `json:"displayName"`
		} `json:"by"`
		When   string `json:"when"`
		Number int    `json:"number"`
	} `json:"lastUpdated"`
}

func NewClient(baseURI, username, password string, log *logger.Logger) *Client {
	// Accepts self-signed instance certificates.
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &Client{
		baseURI:  baseURI,
		username: username,
		password: password,
		client:   &http.Client{Transport: transport},
		logger:   log,
	}
}

// do issues a request against the REST API rooted at baseURI and returns
// the response envelope. Transport failures are returned as errors; non-2xx
// statuses are left for the caller to inspect.
func (c *Client) do(method, path string, query url.Values, contentType string, body io.Reader, headers map[string]string) (*Response, error) {
	endpoint := strings.TrimSuffix(c.baseURI, "/") + "/rest/api/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	if c.logger != nil {
		c.logger.Debug("%s %s", method, endpoint)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Reason:     reasonFromStatus(resp.Status, resp.StatusCode),
		Body:       data,
	}, nil
}

func (c *Client) doJSON(method, path string, payload interface{}) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return c.do(method, path, nil, "application/json", bytes.NewBuffer(data), nil)
}

// CreateContent posts a new page. An empty ancestorID creates the page at
// the space root.
func (c *Client) CreateContent(spaceKey, title, ancestorID, body string) (*Page, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": title,
		"space": map[string]string{"key": spaceKey},
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          body,
				"representation": "storage",
			},
		},
	}
	if ancestorID != "" {
		payload["ancestors"] = []map[string]string{
			{"id": ancestorID},
		}
	}

	resp, err := c.doJSON("POST", "content/", payload)
	if err != nil {
		return nil, err
	}
	return decodePage(resp)
}

// UpdateContent replaces the body and title of an existing page. The caller
// supplies the version number the server should record; updates are always
// full edits, never minor ones.
func (c *Client) UpdateContent(pageID, title, body string, version int) (*Page, error) {
	payload := map[string]interface{}{
		"id":    pageID,
		"type":  "page",
		"title": title,
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          body,
				"representation": "storage",
			},
		},
		"version": map[string]interface{}{
			"number":    version,
			"minorEdit": false,
		},
	}

	resp, err := c.doJSON("PUT", "content/"+pageID, payload)
	if err != nil {
		return nil, err
	}
	return decodePage(resp)
}

func (c *Client) DeleteContent(pageID string) error {
	resp, err := c.do("DELETE", "content/"+pageID, nil, "", nil, nil)
	if err != nil {
		return err
	}
	return resp.Err()
}

// ContentByID fetches a page with its storage body, version, and space
// expanded.
func (c *Client) ContentByID(pageID string) (*Page, error) {
	query := url.Values{}
	query.Set("expand", "body.storage,version,space")

	resp, err := c.do("GET", "content/"+pageID, query, "", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodePage(resp)
}

// ContentByTitle looks up a page by exact title. A nil page with a nil
// error means no match. An empty spaceKey searches every space.
func (c *Client) ContentByTitle(spaceKey, title string) (*Page, error) {
	clauses := []string{"type=page"}
	if spaceKey != "" {
		clauses = append(clauses, "space="+spaceKey)
	}
	clauses = append(clauses, "title="+quoteCQL(title))

	pages, err := c.searchCQL(strings.Join(clauses, " AND "))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

// SearchContent finds pages whose titles contain the given fragment. An
// empty spaceKey searches every space.
func (c *Client) SearchContent(spaceKey, fragment string) ([]Page, error) {
	clauses := []string{"type=page"}
	if spaceKey != "" {
		clauses = append(clauses, "space="+spaceKey)
	}
	clauses = append(clauses, "title~"+fragment)

	return c.searchCQL(strings.Join(clauses, " AND "))
}

func (c *Client) searchCQL(cql string) ([]Page, error) {
	query := url.Values{}
	query.Set("cql", cql)

	resp, err := c.do("GET", "content/search", query, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result struct {
		Results []Page `json:"results"`
	}
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Results, nil
}

func (c *Client) ContentHistory(pageID string) (*History, error) {
	resp, err := c.do("GET", "content/"+pageID+"/history", nil, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var history History
	if err := resp.JSON(&history); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &history, nil
}

func decodePage(resp *Response) (*Page, error) {
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var page Page
	if err := resp.JSON(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}

// quoteCQL wraps a value for exact-match CQL comparison, escaping embedded
// backslashes and quotes.
func quoteCQL(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

// reasonFromStatus extracts the reason phrase from a status line such as
// "404 Not Found", falling back to the standard text for the code.
func reasonFromStatus(status string, code int) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}
