package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	htmldoc "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"wikipen/internal/confluence"
	"wikipen/internal/editor"
	"wikipen/internal/markup"
	"wikipen/internal/rewrite"
	"wikipen/internal/sync"
)

var (
	getSpace     string
	getTitle     string
	getAllSpaces bool
	getFormat    string
	getOut       string
)

// getCmd fetches a Confluence page into a local document
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a Confluence page into a local document",
	Long: `Search for a page and write its content to a local file.

The search prompts for a space key and a title fragment; --space and
--title pre-answer the prompts, and --all-spaces searches every space.
Matching pages are offered as a selection. The fetched page lands as
indented storage XML by default, or as editable Markdown with
--format markdown, and the page binding is recorded so a later
'wikipen update' pushes the edit back.`,
	Example: `  wikipen get
  wikipen get --space DOCS --title "Release Notes"
  wikipen get --all-spaces --title Runbook --format markdown --out runbook.md`,
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	switch getFormat {
	case "storage", "markdown":
	default:
		return fmt.Errorf("unsupported format: %s", getFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The space flag acts as a per-invocation default space key
	if getSpace != "" {
		cfg.Confluence.DefaultSpaceKey = getSpace
	}

	outDir := "."
	if getOut != "" {
		outDir = filepath.Dir(getOut)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	syncer, host, err := buildSyncer(cfg, outDir)
	if err != nil {
		return err
	}

	fetch, prompt := syncer.StartFetch(getAllSpaces)
	result, err := driveFetch(fetch, prompt)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case sync.Succeeded:
	case sync.Cancelled:
		fmt.Println("Aborted.")
		return nil
	default:
		return result.Err
	}

	page := result.Record
	outPath := getOut
	if outPath == "" {
		outPath = filepath.Join(outDir, defaultFileName(page.Title, getFormat))
	}

	doc := &editor.Document{
		Name:   filepath.Base(outPath),
		Path:   outPath,
		Text:   renderFetched(page, getFormat),
		Syntax: fetchedSyntax(getFormat),
	}
	if err := host.OpenDocument(doc); err != nil {
		return err
	}
	if err := syncer.Bind(doc.Name, page); err != nil {
		return fmt.Errorf("failed to record the page binding: %w", err)
	}

	fmt.Printf("Fetched '%s' (version %d) into %s\n", page.Title, page.Version.Number, outPath)
	shareURL(host, result.URL)
	return nil
}

// driveFetch walks the prompt machine to its terminal result, feeding flag
// pre-answers before asking interactively.
func driveFetch(fetch *sync.Fetch, prompt *sync.Prompt) (*sync.Result, error) {
	preAnswers := map[string]string{}
	if getTitle != "" {
		preAnswers["Page title"] = getTitle
	}

	for prompt != nil {
		answer, err := promptAnswer(prompt, preAnswers)
		if err != nil {
			return nil, err
		}

		var result *sync.Result
		result, prompt = fetch.Resume(answer)
		if result != nil {
			return result, nil
		}
	}
	return nil, errors.New("page lookup ended without a result")
}

// promptAnswer resolves one prompt. Pre-answers are consumed on use so a
// rejected answer falls back to the interactive prompt. Ctrl+C becomes a
// cancelled answer instead of an error.
func promptAnswer(prompt *sync.Prompt, preAnswers map[string]string) (sync.Answer, error) {
	if text, ok := preAnswers[prompt.Message]; ok {
		delete(preAnswers, prompt.Message)
		return sync.Answer{Text: text}, nil
	}

	switch prompt.Kind {
	case sync.PromptSelect:
		var index int
		err := askOne(&survey.Select{Message: prompt.Message, Options: prompt.Options}, &index)
		if err == terminal.InterruptErr {
			return sync.Answer{Cancelled: true}, nil
		}
		if err != nil {
			return sync.Answer{}, err
		}
		return sync.Answer{Index: index}, nil
	default:
		var text string
		err := askOne(&survey.Input{Message: prompt.Message}, &text)
		if err == terminal.InterruptErr {
			return sync.Answer{Cancelled: true}, nil
		}
		if err != nil {
			return sync.Answer{}, err
		}
		return sync.Answer{Text: text}, nil
	}
}

// renderFetched turns the page's storage body into the requested document
// text. Markdown conversion failures fall back to the raw storage body.
func renderFetched(page *confluence.Page, format string) string {
	storage := page.Body.Storage.Value
	if format != "markdown" {
		return rewrite.Prettify(storage)
	}

	md, err := htmldoc.ConvertString(storage)
	if err != nil {
		return storage
	}

	// A front matter header makes the fetched document round-trippable
	// through 'wikipen update' without touching the recorded binding.
	return fmt.Sprintf("Space: %s\nTitle: %s\n\n%s", page.Space.Key, page.Title, md)
}

func fetchedSyntax(format string) string {
	if format == "markdown" {
		return markup.Markdown.String()
	}
	return markup.Storage.String()
}

// defaultFileName derives a file name from the page title.
func defaultFileName(title, format string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		default:
			return r
		}
	}, strings.TrimSpace(title))
	if name == "" {
		name = "page"
	}
	if format == "markdown" {
		return name + ".md"
	}
	return name + ".xml"
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getSpace, "space", "s", "", "space key to search (skips the space prompt)")
	getCmd.Flags().StringVarP(&getTitle, "title", "t", "", "title fragment to search for (skips the title prompt)")
	getCmd.Flags().BoolVarP(&getAllSpaces, "all-spaces", "a", false, "search every space instead of one space key")
	getCmd.Flags().StringVarP(&getFormat, "format", "f", "storage", "document format: storage|markdown")
	getCmd.Flags().StringVarP(&getOut, "out", "o", "", "output file path (default derived from the page title)")
}
