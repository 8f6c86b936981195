package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wikipen",
	Short: "Publish editor documents to Confluence",
	Long: `Wikipen posts local Markdown and reStructuredText documents to Confluence
pages and keeps them in sync. A document names its destination in a front
matter header (Space, Ancestor Title, Title); once posted, the page binding
is recorded next to the document so later updates and deletes need no
front matter at all.`,
	Example: `  wikipen post notes.md                       # Create the page named by the front matter
  wikipen update notes.md                     # Push an edited document
  wikipen get -s DOCS -t "Release Notes"      # Fetch a page into a local file
  wikipen delete notes.md                     # Delete the bound page
  wikipen history notes.md                    # Show who last touched the page`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to configuration file (default wikipen.yaml, then the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
