package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wikipen/internal/sync"
)

var updateSyntax string

// updateCmd pushes an edited document back to its Confluence page
var updateCmd = &cobra.Command{
	Use:   "update <file>",
	Short: "Push an edited document to its Confluence page",
	Long: `Update the Confluence page bound to a document.

A document fetched or posted with wikipen carries a recorded binding and
needs no front matter. An unbound document is resolved through its front
matter instead, which must then name at least the Space and the Title.
Storage documents are pushed verbatim; Markdown and reStructuredText are
converted again before the push.`,
	Example: `  wikipen update notes.md
  wikipen update "Release Notes.xml"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0], updateSyntax)
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

	result, err := syncer.Update(doc)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case sync.Succeeded:
		fmt.Printf("Updated page '%s' to version %d\n", result.Record.Title, result.Record.Version.Number)
		shareURL(host, result.URL)
		return nil
	case sync.PartialFailure:
		fmt.Printf("Updated page '%s' to version %d\n", result.Record.Title, result.Record.Version.Number)
		shareURL(host, result.URL)
		return result.Err
	default:
		return result.Err
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateSyntax, "syntax", "", "override the syntax inferred from the file extension (Markdown, reStructuredText, Storage)")
}
