package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to compatbrowse! Let's point it at a compatibility API.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data source.
	modePrompt := promptui.Select{
		Label: "Where should records come from",
		Items: []string{
			"live API   (fetch from the JSON-API backend)",
			"snapshot   (serve a local sqlite snapshot)",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source selection: %w", err)
	}
	cfg.Offline = modeIdx == 1

	// 2. API location. Snapshots are crawled from it too.
	basePrompt := promptui.Prompt{
		Label:    "API base URL",
		Default:  cfg.API.BaseURL,
		Validate: validateBaseURL,
	}
	if cfg.API.BaseURL, err = basePrompt.Run(); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	nsPrompt := promptui.Prompt{
		Label:   "API namespace",
		Default: cfg.API.Namespace,
	}
	ns, err := nsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("namespace: %w", err)
	}
	cfg.API.Namespace = strings.Trim(ns, "/")

	// 3. Web frontend.
	portPrompt := promptui.Prompt{
		Label:   "Listen port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("not a port: %q", s)
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	rootPrompt := promptui.Prompt{
		Label:   "Browse root URL",
		Default: cfg.Server.RootURL,
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("root url: %w", err)
	}
	cfg.Server.RootURL = "/" + strings.Trim(root, "/")

	// 4. Snapshot file.
	snapPrompt := promptui.Prompt{
		Label:   "Snapshot database path",
		Default: cfg.Snapshot.Path,
	}
	if cfg.Snapshot.Path, err = snapPrompt.Run(); err != nil {
		return nil, fmt.Errorf("snapshot path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	if cfg.Offline {
		fmt.Println("Run `compatbrowse snapshot` before serving to fill the snapshot.")
	}
	return cfg, nil
}
