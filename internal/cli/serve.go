package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqtower/pkg/server"
)

// serveCommand creates the serve command, which exposes one graph over HTTP
// until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags  storeFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve <file.gfa>",
		Short: "Serve a graph over a read-only HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listen = flagOr(cmd, "listen", listen, c.Config.Listen)
			return c.runServe(cmd, args[0], listen, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "address to listen on (default from config)")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, path, listen string, flags storeFlags) error {
	sess, err := c.openSession(cmd, path, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	sum := sess.Summary()
	printSuccess("Serving %s", StyleHighlight.Render(path))
	printStats(sum.Nodes, sum.Edges, len(sum.Genomes), sum.Cached)
	printKeyValue("listen", StyleLink.Render(listen))

	srv := server.New(sess,
		server.WithLogger(loggerFromContext(cmd.Context())),
		server.WithDefaults(c.Config.Radius, c.Config.CollapseSNPs))
	return srv.ListenAndServe(cmd.Context(), listen)
}
