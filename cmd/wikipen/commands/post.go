package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wikipen/internal/sync"
)

var postSyntax string

// postCmd creates a new Confluence page from a single local document
var postCmd = &cobra.Command{
	Use:   "post <file>",
	Short: "Create a Confluence page from a local document",
	Long: `Create the Confluence page described by a document's front matter.

The document must open with a front matter header naming the destination:

  Space: DOCS
  Ancestor Title: Engineering Handbook
  Title: My New Page

The body after the first blank line is converted to Confluence storage
format, local images become uploaded attachments, and the new page binding
is recorded next to the document for later updates.`,
	Example: `  wikipen post notes.md
  wikipen post guide.rst
  wikipen post export.html --syntax Storage`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func runPost(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0], postSyntax)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	syncer, host, err := buildSyncer(cfg, filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	result, err := syncer.Post(doc)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case sync.Succeeded:
		fmt.Printf("Created page '%s' (ID: %s)\n", result.Record.Title, result.Record.ID)
		shareURL(host, result.URL)
		return nil
	case sync.PartialFailure:
		// The page exists and stays bound; only attachments are missing.
		fmt.Printf("Created page '%s' (ID: %s)\n", result.Record.Title, result.Record.ID)
		shareURL(host, result.URL)
		return result.Err
	default:
		return result.Err
	}
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().StringVar(&postSyntax, "syntax", "", "override the syntax inferred from the file extension (Markdown, reStructuredText, Storage)")
}
