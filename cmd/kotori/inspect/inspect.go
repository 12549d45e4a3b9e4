// Package inspectcmder provides the inspect command for examining the
// memory and reference collections.
package inspectcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/reference"
)

// DefaultProbes are the queries run against both collections.
var DefaultProbes = []string{
	"empty nest syndrome",
	"children leaving home",
	"parenting after kids move out",
}

const (
	previewLimit = 5
	probeK       = 3
)

// Report summarizes the contents of both collections.
type Report struct {
	MemoryCount    int                 `json:"memory_count"`
	MemoryByType   map[memory.Type]int `json:"memory_by_type"`
	MemoryPreview  []memory.Record     `json:"memory_preview"`
	ReferenceCount int                 `json:"reference_count"`
	Sources        map[string]int      `json:"sources"`
	Probes         []Probe             `json:"probes"`
}

// Probe is the result of one diagnostic query.
type Probe struct {
	Query     string             `json:"query"`
	Memory    []memory.Candidate `json:"memory"`
	Reference []reference.Chunk  `json:"reference"`
}

type inspectCommander struct {
	jsonOut bool
	probes  []string
}

const inspectLongDesc string = `Inspect the memory and reference collections.

Prints how many remembered turns exist per type, a preview of the first
records, how many reference chunks each source contributed, and the nearest
matches for a few probe queries.

Examples:
  kotori inspect
  kotori inspect --probe "my son moved abroad" --json`

const inspectShortDesc string = "Inspect stored memory and reference documents"

func NewInspectCmd() *cobra.Command {
	cmder := &inspectCommander{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: inspectShortDesc,
		Long:  inspectLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := pipeline.LoadOptions(cmd, logger.WithWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	config.AddPipelineFlags(cmd)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().StringArrayVar(&cmder.probes, "probe", DefaultProbes, "Probe query (repeatable)")

	return cmd
}

func (c *inspectCommander) run(ctx context.Context, out io.Writer, o pipeline.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	stores, err := pipeline.OpenStores(ctx, o)
	if err != nil {
		return err
	}
	defer stores.Close()

	report, err := BuildReport(ctx, stores.Memory, stores.Reference, c.probes)
	if err != nil {
		return err
	}

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	Render(out, report)
	return nil
}

// BuildReport gathers collection statistics and runs the probe queries.
func BuildReport(ctx context.Context, mem *memory.Store, ref *reference.Index, probes []string) (Report, error) {
	records, err := mem.All(ctx)
	if err != nil {
		return Report{}, err
	}
	docs, err := ref.Documents(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing reference chunks: %w", err)
	}

	r := Report{
		MemoryCount:    len(records),
		MemoryByType:   make(map[memory.Type]int),
		MemoryPreview:  records[:min(previewLimit, len(records))],
		ReferenceCount: len(docs),
		Sources:        make(map[string]int),
	}
	for _, rec := range records {
		r.MemoryByType[rec.Type]++
	}
	for _, d := range docs {
		r.Sources[d.Metadata[reference.KeySource]]++
	}

	for _, q := range probes {
		p := Probe{Query: q, Reference: ref.Search(ctx, q, probeK)}
		if p.Memory, err = mem.Search(ctx, q, probeK); err != nil {
			return Report{}, err
		}
		r.Probes = append(r.Probes, p)
	}
	return r, nil
}

// Render prints report for a terminal.
func Render(out io.Writer, r Report) {
	fmt.Fprintf(out, "\n  %s  %s\n", cliui.HeaderStyle.Render("Memory"), cliui.DimStyle.Render(fmt.Sprintf("%d records", r.MemoryCount)))
	for _, t := range memory.Types() {
		fmt.Fprintf(out, "    %s %d\n", cliui.AgentBadge(string(t)), r.MemoryByType[t])
	}
	for _, rec := range r.MemoryPreview {
		fmt.Fprintf(out, "    %s %s\n", cliui.DimStyle.Render(cliui.Preview(rec.ID, 16)), cliui.PreviewStyle.Render(cliui.Preview(rec.Content, 70)))
	}

	fmt.Fprintf(out, "\n  %s  %s\n", cliui.HeaderStyle.Render("Reference"), cliui.DimStyle.Render(fmt.Sprintf("%d chunks", r.ReferenceCount)))
	for source, n := range r.Sources {
		fmt.Fprintf(out, "    %s %d\n", cliui.NameStyle.Render(source), n)
	}

	for _, p := range r.Probes {
		fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("probe:"), cliui.ValueStyle.Render(fmt.Sprintf("%q", p.Query)))
		if len(p.Memory) == 0 && len(p.Reference) == 0 {
			fmt.Fprintf(out, "    %s\n", cliui.DimStyle.Render("no matches"))
		}
		for _, m := range p.Memory {
			fmt.Fprintf(out, "    %s %s %s\n",
				cliui.AgentBadge(string(m.Type)),
				cliui.DimStyle.Render(fmt.Sprintf("%.3f", m.Distance)),
				cliui.PreviewStyle.Render(cliui.Preview(m.Content, 60)),
			)
		}
		for _, c := range p.Reference {
			fmt.Fprintf(out, "    %s %s %s\n",
				cliui.NameStyle.Render(c.Source),
				cliui.DimStyle.Render(fmt.Sprintf("%.3f", c.Score)),
				cliui.PreviewStyle.Render(cliui.Preview(c.Content, 60)),
			)
		}
	}
	fmt.Fprintln(out)
}
