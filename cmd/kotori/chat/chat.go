// Package chatcmder provides the chat command, an interactive conversation
// with Kotori.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/kotori/cmd/kotori/ask"
	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/dotdir"
	"github.com/papercomputeco/kotori/pkg/logger"
)

// logFile receives chat logs with --debug so they do not disturb the TUI.
const logFile = "chat.log"

// Runner executes one dialogue turn.
type Runner interface {
	Run(ctx context.Context, req dialogue.Request) dialogue.State
}

type chatCommander struct {
	clearHistory bool
	plain        bool
}

const chatLongDesc string = `Chat with Kotori interactively.

Each message is routed to the welcome, qna, emotional, or suggestion agent
and answered in turn. Recent turns from the session history are shown when
the chat starts. Type "exit" or press Ctrl+C to leave.

When stdin is not a terminal, or with --plain, messages are read one per line
and replies are printed without the interactive interface.

Examples:
  kotori chat
  kotori chat --clear
  printf 'Hi Kotori\nI miss my kids\n' | kotori chat`

const chatShortDesc string = "Chat with Kotori interactively"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			debug, _ := cmd.Flags().GetBool("debug")

			logWriter, closeLog, err := openLog(configDir, debug)
			if err != nil {
				return err
			}
			defer closeLog()

			o, err := pipeline.LoadOptions(cmd, logger.WithPretty(false), logger.WithWriter(logWriter))
			if err != nil {
				return err
			}
			return cmder.run(cmd, o)
		},
	}

	config.AddPipelineFlags(cmd)
	cmd.Flags().BoolVar(&cmder.clearHistory, "clear", false, "Clear the session history before starting")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Read one message per line without the interactive interface")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, o pipeline.Options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if c.clearHistory {
		if err := dotdir.NewManager().ClearSession(o.ConfigDir); err != nil {
			return err
		}
	}

	p, err := pipeline.New(ctx, o)
	if err != nil {
		return err
	}
	defer p.Close()

	in := cmd.InOrStdin()
	f, isFile := in.(*os.File)
	if c.plain || !isFile || !cliui.IsTerminal(f) {
		return RunLines(ctx, in, cmd.OutOrStdout(), p.Orchestrator, o.ConfigDir)
	}

	session, err := dotdir.NewManager().LoadSession(o.ConfigDir)
	if err != nil {
		return err
	}
	return runTUI(ctx, p.Orchestrator, o.ConfigDir, session)
}

// RunLines answers each non-empty input line until EOF or an exit word.
func RunLines(ctx context.Context, in io.Reader, out io.Writer, runner Runner, configDir string) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}

		state := runner.Run(ctx, dialogue.Request{Input: line})
		if err := pipeline.RecordHistory(configDir, state); err != nil {
			fmt.Fprintf(out, "  %s could not save history: %v\n", cliui.WarnStyle.Render("!"), err)
		}
		if err := askcmder.PrintState(out, state); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func isExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

// openLog returns the chat log writer. Logs are discarded unless debug is
// set, in which case they go to chat.log in the .kotori/ directory.
func openLog(configDir string, debug bool) (io.Writer, func(), error) {
	if !debug {
		return io.Discard, func() {}, nil
	}

	dir, err := dotdir.NewManager().EnsureTarget(configDir)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening chat log: %w", err)
	}
	return f, func() { f.Close() }, nil
}
