package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/seqtower/pkg/errors"
)

// locateCommand creates the locate command, which maps a genome coordinate
// to the segment holding it.
func (c *CLI) locateCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "locate <file.gfa> <genome> <position>",
		Short: "Find the segment holding a genome coordinate",
		Long: `Find the segment that holds a 1-based coordinate on one genome's path.

Genomes are named by the ORI:Z: tags of the graph file.`,
		Example: "  seqtower locate chr1.gfa HG002 1048576",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[2])
			if err != nil {
				return errs.New(errs.ErrCodeInvalidInput, "position must be an integer, got %q", args[2])
			}
			return c.runLocate(cmd, args[0], args[1], pos, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runLocate(cmd *cobra.Command, path, genome string, pos int, flags storeFlags) error {
	sess, err := c.openSession(cmd, path, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	gn, err := sess.Graph.Genome(genome)
	if err != nil {
		return err
	}
	id, start, err := gn.SegmentAt(pos)
	if err != nil {
		return err
	}
	length, err := sess.Graph.SequenceLength(id)
	if err != nil {
		return err
	}

	printSuccess("%s:%d is in segment %s", genome, pos, StyleHighlight.Render(strconv.Itoa(id)))
	printKeyValue("segment", strconv.Itoa(id))
	printKeyValue("range", fmt.Sprintf("%d-%d", start, start+length-1))
	printKeyValue("offset", strconv.Itoa(pos-start))
	printDetail("genome %s spans %d bp over %d segments", genome, gn.Length, len(gn.Segments()))
	return nil
}
