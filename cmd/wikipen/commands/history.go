package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wikipen/internal/editor"
)

// historyCmd shows the revision history of the page bound to a document
var historyCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "Show the history of the page bound to a document",
	Long: `Display who created the bound page and who last changed it.

The document must carry a recorded binding, so post or fetch it with
wikipen first.`,
	Example: `  wikipen history notes.md`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	doc := &editor.Document{Name: filepath.Base(args[0]), Path: args[0]}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	syncer, _, err := buildSyncer(cfg, filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	history, err := syncer.History(doc)
	if err != nil {
		return err
	}

	fmt.Printf("History for '%s':\n", doc.Name)
	fmt.Printf("  Created by %s on %s\n", history.CreatedBy.DisplayName, history.CreatedDate)
	fmt.Printf("  Last updated by %s on %s (version %d)\n",
		history.LastUpdated.By.DisplayName, history.LastUpdated.When, history.LastUpdated.Number)
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
