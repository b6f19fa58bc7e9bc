package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqtower/pkg/cache"
	errs "github.com/matzehuels/seqtower/pkg/errors"
	pkgio "github.com/matzehuels/seqtower/pkg/io"
	"github.com/matzehuels/seqtower/pkg/render"
	"github.com/matzehuels/seqtower/pkg/view"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type subgraphOpts struct {
	store    storeFlags
	center   int
	radius   int
	collapse bool
	format   string
	detailed bool
	output   string
}

// subgraphCommand creates the subgraph command, which extracts the
// neighbourhood of one segment as a layered view.
func (c *CLI) subgraphCommand() *cobra.Command {
	var opts subgraphOpts

	cmd := &cobra.Command{
		Use:   "subgraph <file.gfa>",
		Short: "Extract the neighbourhood of a segment",
		Long: `Extract every segment within --radius links of --center and order it into layers.

The view is written as JSON (reloadable with "render"), DOT, or SVG.
SNP bubbles are folded into single nodes unless --collapse=false.`,
		Example: `  seqtower subgraph chr1.gfa --center 1200 --radius 5
  seqtower subgraph chr1.gfa --center 1200 --format svg -o chr1-1200.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format, formatJSON, formatDOT, formatSVG); err != nil {
				return err
			}
			opts.radius = flagOr(cmd, "radius", opts.radius, c.Config.Radius)
			opts.collapse = flagOr(cmd, "collapse", opts.collapse, c.Config.CollapseSNPs)
			return c.runSubgraph(cmd, args[0], opts)
		},
	}

	opts.store.register(cmd)
	cmd.Flags().IntVar(&opts.center, "center", 0, "segment id at the center of the view (required)")
	cmd.Flags().IntVarP(&opts.radius, "radius", "r", 10, "maximum number of links from the center (default from config)")
	cmd.Flags().BoolVar(&opts.collapse, "collapse", true, "fold SNP bubbles into single nodes (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json, dot, svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with depth, length and genomes (dot, svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("center")

	return cmd
}

func (c *CLI) runSubgraph(cmd *cobra.Command, path string, opts subgraphOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	sess, err := c.openSession(cmd, path, opts.store)
	if err != nil {
		return err
	}
	defer sess.Close()

	prog := newProgress(logger)
	v, err := sess.View(opts.center, opts.radius, opts.collapse)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d nodes in %d layers around %d", v.NodeCount(), len(v.Layers), opts.center))
	bubbles := len(v.Bubbles())
	logger.Debug("folded SNP bubbles", "count", bubbles)

	rc := newRenderCache(ctx, opts.store.noCache)
	defer rc.Close()
	data, err := encodeView(ctx, v, opts.format, opts.detailed, rc)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote %s view of segment %s", opts.format, StyleHighlight.Render(fmt.Sprint(opts.center)))
		if bubbles > 0 {
			fmt.Println("  " + StyleBubble.Render(fmt.Sprintf("%d SNP bubbles folded", bubbles)))
		}
		printFile(opts.output)
	}
	return nil
}

// encodeView serializes v in the given format. SVG renders are looked up in
// and added to rc.
func encodeView(ctx context.Context, v *view.View, format string, detailed bool, rc cache.Cache) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(v, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		return []byte(render.ToDOT(v, render.Options{Detailed: detailed})), nil
	case formatSVG:
		return renderSVG(ctx, render.ToDOT(v, render.Options{Detailed: detailed}), rc)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown format %q", format)
	}
}

func renderSVG(ctx context.Context, dot string, rc cache.Cache) ([]byte, error) {
	logger := loggerFromContext(ctx)
	key := cache.Key(formatSVG, []byte(dot))
	if data, ok, err := rc.Get(ctx, key); err == nil && ok {
		logger.Debug("render cache hit", "key", key[:12])
		return data, nil
	} else if err != nil {
		logger.Warn("render cache unreadable", "err", err)
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := rc.Set(ctx, key, svg, cache.DefaultTTL); err != nil {
		logger.Warn("render cache not updated", "err", err)
	}
	return svg, nil
}

// validateFormat checks format against the formats a command supports.
func validateFormat(format string, valid ...string) error {
	for _, f := range valid {
		if format == f {
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidInput, "invalid format: %s (must be one of %v)", format, valid)
}
