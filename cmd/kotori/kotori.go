// Package kotoricmder is the root kotori command.
package kotoricmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/kotori/cmd/kotori/ask"
	authcmder "github.com/papercomputeco/kotori/cmd/kotori/auth"
	chatcmder "github.com/papercomputeco/kotori/cmd/kotori/chat"
	configcmder "github.com/papercomputeco/kotori/cmd/kotori/config"
	historycmder "github.com/papercomputeco/kotori/cmd/kotori/history"
	ingestcmder "github.com/papercomputeco/kotori/cmd/kotori/ingest"
	initcmder "github.com/papercomputeco/kotori/cmd/kotori/init"
	inspectcmder "github.com/papercomputeco/kotori/cmd/kotori/inspect"
	servecmder "github.com/papercomputeco/kotori/cmd/kotori/serve"
	versioncmder "github.com/papercomputeco/kotori/cmd/version"
)

const kotoriLongDesc string = `Kotori is a supportive companion for parents going through
Empty Nest Syndrome.

Every message is routed to one of four agents: welcome, qna (facts about
empty nest syndrome), emotional (support), or suggestion (activities).
Answers draw on ingested reference documents and on remembered turns.

Get started:
  kotori init --preset ollama    Create a local .kotori/ directory
  kotori ingest guide.txt        Add reference documents
  kotori chat                    Start a conversation
  kotori serve                   Run the HTTP API and MCP server`

const kotoriShortDesc string = "Kotori - Empty Nest Companion"

func NewKotoriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kotori",
		Short:         kotoriShortDesc,
		Long:          kotoriLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .kotori/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(inspectcmder.NewInspectCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
