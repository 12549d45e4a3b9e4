// Package servecmder provides the serve command for running the HTTP API
// and MCP server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/api"
	"github.com/papercomputeco/kotori/api/mcp"
	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/logger"
)

type serveCommander struct {
	noMCP   bool
	logFile string
}

const serveLongDesc string = `Run the Kotori API server.

Endpoints:
  GET  /ping                 Health check
  POST /v1/chat              Run one dialogue turn ({"input": "..."})
  GET  /v1/memory/search     Search remembered turns (?query=...&k=5)
  GET  /v1/memory            List remembered turns
  ALL  /mcp                  MCP streamable HTTP endpoint (kotori_chat, memory_recall)

Completed turns are published to the configured event stream.

Examples:
  kotori serve
  kotori serve --listen :9000 --llm-provider ollama
  kotori serve --eventstream-provider kafka --eventstream-brokers localhost:9092
  kotori serve --log-file /var/log/kotori.jsonl`

const serveShortDesc string = "Run the Kotori API and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := pipeline.LoadOptions(cmd,
				logger.WithPretty(false),
				logger.WithJSON(true),
				logger.WithWriter(cmd.OutOrStdout()),
			)
			if err != nil {
				return err
			}

			closeLog, err := cmder.attachLogFile(&o)
			if err != nil {
				return err
			}
			defer closeLog()

			return cmder.run(cmd.Context(), o)
		},
	}

	config.AddPipelineFlags(cmd)
	var listen, provider, brokers string
	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamProv, &provider)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamBrk, &brokers)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append debug-level JSON logs with source locations to this file")

	return cmd
}

// attachLogFile tees o.Logger into a debug-level JSON log at c.logFile.
func (c *serveCommander) attachLogFile(o *pipeline.Options) (func(), error) {
	if c.logFile == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLog := logger.New(
		logger.WithJSON(true),
		logger.WithDebug(true),
		logger.WithSource(true),
		logger.WithWriter(f),
	)
	o.Logger = logger.Multi(o.Logger, fileLog)
	return func() { f.Close() }, nil
}

func (c *serveCommander) run(ctx context.Context, o pipeline.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := o.Logger

	p, err := pipeline.New(ctx, o)
	if err != nil {
		return err
	}
	defer p.Close()

	apiConfig := api.Config{ListenAddr: o.Config.API.Listen}
	if !c.noMCP {
		apiConfig.MCP, err = mcp.NewServer(mcp.Config{
			Runner: p.Orchestrator,
			Memory: p.Memory,
			Logger: logger.Component(log, "mcp"),
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
	}

	server, err := api.NewServer(apiConfig, p.Orchestrator, p.Memory, logger.Component(log, "api"))
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	log.Info("kotori ready",
		"llm_provider", o.Config.LLM.Provider,
		"llm_model", o.Config.LLM.Model,
		"vector_store", o.Config.VectorStore.Provider,
		"eventstream", o.Config.EventStream.Provider,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}
	return server.Shutdown()
}
