package markup

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rstToHTML shells out to the docutils converter resolved at startup. The
// tool reads the document on stdin and writes a full HTML document; only the
// body content is kept.
func (c *Converter) rstToHTML(content string) (string, error) {
	if !c.caps.HasRST() {
		return "", &MissingDependencyError{Tool: c.caps.RSTTool}
	}

	cmd := exec.Command(c.caps.RSTPath)
	cmd.Stdin = strings.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s failed: %s", c.caps.RSTTool, detail)
		}
		return "", fmt.Errorf("%s failed: %w", c.caps.RSTTool, err)
	}

	return extractBody(stdout.String())
}

func extractBody(document string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("failed to parse converter output: %w", err)
	}
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to extract converter output: %w", err)
	}
	return body, nil
}
