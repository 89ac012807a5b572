package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/logging"
)

// defaultConfigPath is used when neither --config nor RINGEXT_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ringext",
		Short:         "Ring observation reconciliation and firmware history",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", configPathFromEnv(),
		"configuration file (env RINGEXT_CONFIG)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newDiagnoseCommand(opts))
	cmd.AddCommand(newFirmwareCommand(opts))

	return cmd
}

func configPathFromEnv() string {
	if path := os.Getenv("RINGEXT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads the configuration file. A missing file falls back to the
// built-in defaults; any other problem is an error.
func loadConfig(path string, log *logging.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("configuration file not found, using defaults", "path", path)
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", path)
	return cfg, nil
}

// enabledCategories resolves refresh.categories. An empty list enables
// every category.
func enabledCategories(names []string) ([]catalog.Category, error) {
	if len(names) == 0 {
		return catalog.Categories(), nil
	}
	set, err := catalog.ParseCategories(names)
	if err != nil {
		return nil, err
	}
	var out []catalog.Category
	for _, c := range catalog.Categories() {
		if set[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
