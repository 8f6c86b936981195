package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"

	"wikipen/internal/config"
	"wikipen/internal/editor"
	"wikipen/internal/markup"
	"wikipen/internal/sync"
	"wikipen/pkg/logger"
)

// askOne is a package-level variable to allow test injection of prompt
// answers; production code asks through survey.
var askOne = survey.AskOne

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ResolveConfigPath(configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := ensureCredentials(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ensureCredentials asks for whatever the config file and environment left
// blank. Prompted values live for this invocation only; configure is the
// command that persists them.
func ensureCredentials(cfg *config.Config) error {
	if cfg.Confluence.Username == "" {
		prompt := &survey.Input{Message: "Confluence username"}
		if err := askOne(prompt, &cfg.Confluence.Username, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if cfg.Confluence.Password == "" {
		prompt := &survey.Password{Message: "Confluence password"}
		if err := askOne(prompt, &cfg.Confluence.Password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	return nil
}

// buildSyncer wires a synchronizer whose page records live next to the
// documents in documentDir.
func buildSyncer(cfg *config.Config, documentDir string) (*sync.Syncer, *editor.TerminalHost, error) {
	log := logger.New(verbose)

	host, err := editor.NewTerminalHost(documentDir, log)
	if err != nil {
		return nil, nil, err
	}

	client := newWikiClient(cfg.Confluence.BaseURI, cfg.Confluence.Username, cfg.Confluence.Password, log)
	return sync.New(cfg, client, host, log), host, nil
}

// loadDocument reads a local file into the editor document abstraction. An
// empty syntax falls back to detection from the file extension.
func loadDocument(path, syntax string) (*editor.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if syntax == "" {
		syntax = markup.KindForPath(path).String()
	}
	return &editor.Document{
		Name:   filepath.Base(path),
		Path:   path,
		Text:   string(data),
		Syntax: syntax,
	}, nil
}

// shareURL puts the canonical page URL on the clipboard; the terminal host
// prints it when no clipboard tool exists.
func shareURL(host editor.Host, url string) {
	if url == "" {
		return
	}
	if err := host.SetClipboard(url); err != nil {
		fmt.Println(url)
	}
}
