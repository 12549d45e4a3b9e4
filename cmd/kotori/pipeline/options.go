package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/dotdir"
	"github.com/papercomputeco/kotori/pkg/logger"
)

// LoadOptions resolves the pipeline configuration for cmd. Values come
// from flags, KOTORI_* environment variables, config.toml, and defaults in
// that order. .env files in the working directory and the .kotori/
// directory are loaded first without overriding variables already set.
func LoadOptions(cmd *cobra.Command, opts ...logger.Option) (Options, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	if err := LoadDotEnv(configDir); err != nil {
		return Options{}, err
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return Options{}, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Registry, config.PipelineFlags)
	config.BindRegisteredFlags(v, cmd, config.Registry, []string{
		config.FlagAPIListen,
		config.FlagAPITarget,
		config.FlagEventStreamProv,
		config.FlagEventStreamBrk,
	})

	opts = append([]logger.Option{logger.WithDebug(debug), logger.WithPretty(true)}, opts...)
	return Options{
		Config:    config.FromViper(v),
		ConfigDir: configDir,
		Logger:    logger.New(opts...),
	}, nil
}

// LoadDotEnv loads .env from the working directory and the .kotori/
// directory when present.
func LoadDotEnv(configDir string) error {
	paths := []string{".env"}
	if dir, err := dotdir.NewManager().Target(configDir); err == nil && dir != "" {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
