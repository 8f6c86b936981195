package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wikipen/internal/config"
)

var (
	configureSets           []string
	configureYes            bool
	configurePrint          bool
	configureNonInteractive bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create or edit the configuration file interactively or via flags",
	Long: `Interactively create or edit the wikipen configuration file.

The prompts cover the Confluence connection (base URI, credentials, default
space key) and markup handling (docutils tool, image rewriting). Use
--set key=value for scripted edits, --print to preview the YAML without
writing, and --non-interactive --yes for scripting.`,
	Example: `  wikipen configure
  wikipen configure --print --non-interactive --set confluence.base_uri=https://wiki.example.com
  wikipen configure --non-interactive --yes --set confluence.username=editor --set confluence.password=secret`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configFile)
	cfg, err := config.LoadLenient(path)
	if err != nil {
		return err
	}

	// Apply flag mutations first (non-interactive layer)
	if err := applySetOperations(cfg, configureSets); err != nil {
		return err
	}

	interactive := !configureNonInteractive
	if interactive {
		if err := interactiveEdit(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	outYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if configurePrint {
		cmd.Print(string(outYAML))
		return nil
	}

	if !configureYes && interactive {
		confirm := false
		prompt := &survey.Confirm{Message: "Save configuration to " + path + "?", Default: true}
		if err := askOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Aborted (no changes saved).")
			return nil
		}
	}

	if err := writeConfigFile(path, outYAML); err != nil {
		return err
	}
	cmd.Printf("Configuration saved to %s\n", path)
	return nil
}

func writeConfigFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	// The file carries credentials, so it stays owner-only
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func applySetOperations(cfg *config.Config, sets []string) error {
	for _, s := range sets {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --set value '%s' (expected key=value)", s)
		}
		if err := setField(cfg, parts[0], parts[1]); err != nil {
			return fmt.Errorf("set %s: %w", parts[0], err)
		}
	}
	return nil
}

func setField(cfg *config.Config, key, value string) error {
	switch key {
	case "confluence.base_uri":
		cfg.Confluence.BaseURI = value
	case "confluence.username":
		cfg.Confluence.Username = value
	case "confluence.password":
		cfg.Confluence.Password = value
	case "confluence.default_space_key":
		cfg.Confluence.DefaultSpaceKey = value
	case "markup.rst_tool":
		cfg.Markup.RSTTool = value
	case "markup.disable_rewrite":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.Markup.DisableRewrite = b
	default:
		return fmt.Errorf("unsupported key '%s'", key)
	}
	return nil
}

func interactiveEdit(cfg *config.Config) error {
	qs := []*survey.Question{
		{Name: "base_uri", Prompt: &survey.Input{Message: "Confluence base URI", Default: cfg.Confluence.BaseURI}},
		{Name: "username", Prompt: &survey.Input{Message: "Username", Default: cfg.Confluence.Username}},
		{Name: "password", Prompt: &survey.Password{Message: "Password (leave blank to keep)"}},
		{Name: "space_key", Prompt: &survey.Input{Message: "Default space key (optional)", Default: cfg.Confluence.DefaultSpaceKey}},
		{Name: "rst_tool", Prompt: &survey.Input{Message: "docutils tool for reStructuredText", Default: cfg.Markup.RSTTool}},
	}
	answers := struct {
		BaseURI  string `survey:"base_uri"`
		Username string `survey:"username"`
		Password string `survey:"password"`
		SpaceKey string `survey:"space_key"`
		RSTTool  string `survey:"rst_tool"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	cfg.Confluence.BaseURI = answers.BaseURI
	cfg.Confluence.Username = answers.Username
	if answers.Password != "" { // keep existing if blank
		cfg.Confluence.Password = answers.Password
	}
	cfg.Confluence.DefaultSpaceKey = answers.SpaceKey
	cfg.Markup.RSTTool = answers.RSTTool

	disable := cfg.Markup.DisableRewrite
	prompt := &survey.Confirm{Message: "Disable image-to-attachment rewriting?", Default: disable}
	if err := askOne(prompt, &disable); err != nil {
		return err
	}
	cfg.Markup.DisableRewrite = disable
	return nil
}

func init() {
	rootCmd.AddCommand(configureCmd)

	configureCmd.Flags().StringArrayVar(&configureSets, "set", nil, "Set a config field using dotted path (e.g. confluence.base_uri=https://wiki.example.com)")
	configureCmd.Flags().BoolVar(&configureYes, "yes", false, "Automatically confirm saving changes")
	configureCmd.Flags().BoolVar(&configurePrint, "print", false, "Print resulting YAML instead of writing to file")
	configureCmd.Flags().BoolVar(&configureNonInteractive, "non-interactive", false, "Disable interactive prompts (use with --set)")
}
