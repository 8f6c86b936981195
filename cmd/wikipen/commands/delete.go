package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"wikipen/internal/editor"
	"wikipen/internal/sync"
)

var deleteYes bool

// deleteCmd deletes the Confluence page bound to a document
var deleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Delete the Confluence page bound to a document",
	Long: `Delete the remote page a document is bound to.

Only documents with a recorded binding can be deleted. The local document
and its recorded binding stay in place, so the page can be posted again
from the same file.`,
	Example: `  wikipen delete notes.md
  wikipen delete notes.md --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	// The binding is keyed by file name, so the file itself is not read;
	// a page stays deletable after its source is gone.
	doc := &editor.Document{Name: filepath.Base(args[0]), Path: args[0]}

	if !deleteYes {
		confirm := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("Delete the page bound to '%s'?", doc.Name)}
		if err := askOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Aborted (nothing deleted).")
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	syncer, _, err := buildSyncer(cfg, filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	result, err := syncer.Delete(doc)
	if err != nil {
		return err
	}

	if result.Outcome != sync.Succeeded {
		return result.Err
	}

	fmt.Printf("Deleted page '%s' (ID: %s)\n", result.Record.Title, result.Record.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}
