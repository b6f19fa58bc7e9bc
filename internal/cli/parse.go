package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// parseCommand creates the parse command, which ingests a graph file into
// its store and prints a summary.
func (c *CLI) parseCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "parse <file.gfa>",
		Short: "Ingest a graph file and cache its sequences",
		Long: `Parse a GFA graph file and store its sequences next to it.

Later commands reuse the committed store and skip copying sequences again.
Use --refresh after editing the file, or --no-cache to keep everything in memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, path string, flags storeFlags) error {
	prog := newProgress(loggerFromContext(cmd.Context()))
	sess, err := c.openSession(cmd, path, flags)
	if err != nil {
		return err
	}
	defer sess.Close()
	prog.done("Parsed " + path)

	sum := sess.Summary()
	printSuccess("Loaded %s", StyleHighlight.Render(path))
	printStats(sum.Nodes, sum.Edges, len(sum.Genomes), sum.Cached)
	printKeyValue("roots", fmtIDs(sum.Roots))
	if len(sum.Genomes) > 0 {
		printKeyValue("genomes", strings.Join(sum.Genomes, ", "))
	}
	if sess.StorePath != "" {
		printKeyValue("store", sess.StorePath)
	}

	if len(sum.Roots) > 0 {
		fmt.Println()
		printNextStep("Extract a neighbourhood", fmt.Sprintf("%s subgraph %s --center %d", appName, path, sum.Roots[0]))
	}
	return nil
}
