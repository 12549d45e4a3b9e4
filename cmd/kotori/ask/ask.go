// Package askcmder provides the ask command for running a single dialogue turn.
package askcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/logger"
)

type askCommander struct {
	input     string
	jsonOut   bool
	noHistory bool
	remote    bool
	apiTarget string
}

const askLongDesc string = `Send one message to Kotori and print the reply.

The message is routed to the welcome, qna, emotional, or suggestion agent.
Non-greeting turns are saved to long-term memory and every turn is added to
the session history shown by "kotori history".

Examples:
  kotori ask "Hi Kotori"
  kotori ask "What is empty nest syndrome?"
  kotori ask "I feel so lonely since my daughter left" --json
  kotori ask "Any ideas for new hobbies?" --llm-provider ollama
  kotori ask "I miss my son" --remote --api-target http://localhost:8081`

const askShortDesc string = "Send one message and print the reply"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.input = strings.Join(args, " ")

			o, err := pipeline.LoadOptions(cmd, logger.WithWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	config.AddPipelineFlags(cmd)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the dialogue state as JSON")
	cmd.Flags().BoolVar(&cmder.noHistory, "no-history", false, "Do not add the turn to the session history")
	cmd.Flags().BoolVar(&cmder.remote, "remote", false, "Send the message to a running kotori API server")
	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *askCommander) run(ctx context.Context, out io.Writer, o pipeline.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := c.turn(ctx, o)
	if err != nil {
		return err
	}

	if !c.noHistory {
		if err := pipeline.RecordHistory(o.ConfigDir, state); err != nil {
			o.Logger.Warn("could not save session history", "error", err)
		}
	}

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	return PrintState(out, state)
}

func (c *askCommander) turn(ctx context.Context, o pipeline.Options) (dialogue.State, error) {
	if c.remote {
		resp, err := ChatAPI(ctx, o.Config.Client.APITarget, c.input)
		if err != nil {
			return dialogue.State{}, err
		}
		o.Logger.Debug("remote turn", "stage", resp.Stage, "duration_ms", resp.DurationMs)
		return resp.State, nil
	}

	p, err := pipeline.New(ctx, o)
	if err != nil {
		return dialogue.State{}, err
	}
	defer p.Close()

	return p.Orchestrator.Run(ctx, dialogue.Request{Input: c.input}), nil
}

// PrintState writes the agent badge and the response, rendered as markdown
// when stdout is a terminal.
func PrintState(out io.Writer, state dialogue.State) error {
	response := state.Response
	if f, ok := out.(*os.File); ok && cliui.IsTerminal(f) {
		if rendered, err := cliui.RenderMarkdown(response); err == nil {
			response = rendered
		}
	} else {
		response = "  " + strings.ReplaceAll(response, "\n", "\n  ") + "\n"
	}

	_, err := fmt.Fprintf(out, "\n  %s\n%s\n", cliui.AgentBadge(string(state.Agent)), response)
	return err
}
