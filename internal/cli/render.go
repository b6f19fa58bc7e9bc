package cli

import (
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/seqtower/pkg/io"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	format   string
	detailed bool
	output   string
	noCache  bool
}

// renderCommand creates the render command, which draws a view saved by
// "subgraph --format json".
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render <view.json>",
		Short: "Draw a saved view as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format, formatDOT, formatSVG); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with depth, length and genomes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.<format>)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	v, err := pkgio.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded view", "path", input, "nodes", v.NodeCount(), "layers", len(v.Layers))

	rc := newRenderCache(ctx, opts.noCache)
	defer rc.Close()

	prog := newProgress(logger)
	data, err := encodeView(ctx, v, opts.format, opts.detailed, rc)
	if err != nil {
		return err
	}
	prog.done("Rendered " + opts.format)

	output := opts.output
	if output == "" {
		output = basePath(input) + "." + opts.format
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	printSuccess("Rendered %s", StyleHighlight.Render(input))
	printFile(output)
	return nil
}
