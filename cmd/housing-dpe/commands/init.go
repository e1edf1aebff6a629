package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	dir := filepath.Dir(root.Config)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	slog.Info("Configuration file created", slog.String("path", root.Config))
	return nil
}
