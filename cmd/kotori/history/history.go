// Package historycmder provides the history command for showing recent turns.
package historycmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/dotdir"
)

const historyLongDesc string = `Show recent turns from the session history, newest first.

The session history keeps the last 15 turns in session.json in the .kotori/
directory. It is separate from long-term memory, which is never trimmed.

Examples:
  kotori history
  kotori history --limit 15
  kotori history --clear`

const historyShortDesc string = "Show recent conversation turns"

func NewHistoryCmd() *cobra.Command {
	var (
		limit     int
		clearFlag bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			if clearFlag {
				if err := dotdir.NewManager().ClearSession(configDir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Cleared session history.\n\n", cliui.SuccessMark)
				return nil
			}
			return run(cmd.OutOrStdout(), configDir, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of turns to show")
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Clear the session history")

	return cmd
}

func run(out io.Writer, configDir string, limit int) error {
	session, err := dotdir.NewManager().LoadSession(configDir)
	if err != nil {
		return err
	}

	entries := session.Recent(limit)
	if len(entries) == 0 {
		fmt.Fprintf(out, "\n  %s No conversation history yet.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Recent conversations"))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s %s %s\n",
			cliui.DimStyle.Render(e.Timestamp.Format("Jan 02 15:04")),
			cliui.AgentBadge(e.Agent),
			cliui.PromptStyle.Render(cliui.Preview(e.Query, 60)),
		)
		fmt.Fprintf(out, "    %s\n\n", cliui.PreviewStyle.Render(cliui.Preview(e.Response, 72)))
	}
	return nil
}
