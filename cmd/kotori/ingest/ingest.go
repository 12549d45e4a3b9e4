// Package ingestcmder provides the ingest command for loading reference
// documents into the reference collection.
package ingestcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/reference"
)

type ingestCommander struct {
	paths   []string
	workers uint
	watch   bool
}

const ingestLongDesc string = `Ingest reference documents used to ground qna, emotional, and
suggestion answers.

Each file is split into overlapping sentence windows that are embedded and
stored in the reference collection. Re-ingesting a file replaces its chunks.
With --watch the files are re-ingested whenever they change until interrupted.

Examples:
  kotori ingest docs/empty-nest.txt
  kotori ingest docs/*.md --workers 8
  kotori ingest notes.txt --watch`

const ingestShortDesc string = "Ingest reference documents"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.paths = args

			o, err := pipeline.LoadOptions(cmd, logger.WithWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	config.AddPipelineFlags(cmd)
	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", 3, "Number of embedding workers")
	cmd.Flags().BoolVar(&cmder.watch, "watch", false, "Re-ingest files when they change")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, out io.Writer, o pipeline.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	stores, err := pipeline.OpenStores(ctx, o)
	if err != nil {
		return err
	}
	defer stores.Close()

	pool, err := reference.NewPool(&reference.PoolConfig{
		Driver:     stores.ReferenceDriver,
		Embedder:   stores.Embedder,
		NumWorkers: c.workers,
		Logger:     logger.Component(o.Logger, "pool"),
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	ingester := reference.NewIngester(pool, logger.Component(o.Logger, "ingest"))

	var result reference.Result
	err = cliui.Step(out, fmt.Sprintf("Ingesting %d file(s)", len(c.paths)), func() error {
		var err error
		result, err = ingester.IngestFiles(ctx, c.paths...)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s %s  %s  %s\n",
		cliui.KeyStyle.Render("chunks:"),
		cliui.ValueStyle.Render(fmt.Sprint(result.Chunks)),
		cliui.DimStyle.Render(fmt.Sprintf("%d failed", result.Failed)),
		cliui.DimStyle.Render(fmt.Sprintf("%d stale removed", result.Removed)),
	)
	if result.Failed > 0 {
		fmt.Fprintf(out, "  %s some chunks could not be embedded, run with --debug for details\n",
			cliui.WarnStyle.Render("!"))
	}

	if !c.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "\n  %s watching for changes, press Ctrl+C to stop\n", cliui.DimStyle.Render("●"))
	if err := ingester.Watch(ctx, c.paths...); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
