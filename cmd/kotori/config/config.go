// Package configcmder provides the config command for managing persistent
// kotori configuration stored in the .kotori/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
)

const configLongDesc string = `Manage persistent kotori configuration.

Configuration is stored as config.toml in the .kotori/ directory and provides
default values for command flags. CLI flags and KOTORI_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  llm.provider, llm.model, llm.base_url, llm.api_key, llm.timeout_seconds,
  router.agent_name,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  memory.collection, reference.collection,
  api.listen, client.api_target,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  kotori config set <key> <value>    Set a configuration value
  kotori config get <key>            Get a configuration value
  kotori config list                 List all configuration values

Examples:
  kotori config set llm.provider anthropic
  kotori config set embedding.model nomic-embed-text
  kotori config get llm.model
  kotori config list`

const configShortDesc string = "Manage persistent kotori configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(out io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
