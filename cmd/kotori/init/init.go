// Package initcmder provides the init command for initializing a local
// .kotori directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
)

const (
	dirName    = ".kotori"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .kotori/ directory in the current working directory.

Creates a local .kotori/ directory that takes precedence over ~/.kotori/
for configuration, credentials, the local vector database, and chat history.
A config.toml is written from the chosen preset, or from the defaults.
An existing config.toml is left untouched.

Presets: groq, openai, anthropic, ollama

Examples:
  kotori init
  kotori init --preset ollama`

const initShortDesc string = "Initialize a local .kotori/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		"Provider preset for config.toml ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(out io.Writer, preset string) error {
	cfg := config.NewDefaultConfig()
	if preset != "" {
		var err error
		if cfg, err = config.PresetConfig(preset); err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .kotori directory: %w", err)
	}

	_, err = os.Stat(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		fmt.Fprintf(out, "\n  %s Already initialized: %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking config: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	fmt.Fprintf(out, "  %s %s %s\n\n",
		cliui.KeyStyle.Render("llm:"),
		cliui.ValueStyle.Render(cfg.LLM.Provider),
		cliui.DimStyle.Render("("+cfg.LLM.Model+")"),
	)
	return nil
}
