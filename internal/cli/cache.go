package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqtower/pkg/cache"
	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/store"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage sequence stores and rendered SVGs",
		Long: `Manage the on-disk caches.

With a graph file argument the subcommands act on that file's sequence store.
Without one they act on the shared SVG render cache.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// storePathFor validates path and resolves its store location.
func (c *CLI) storePathFor(path string) (string, error) {
	if err := errs.ValidateGraphPath(path); err != nil {
		return "", err
	}
	return store.PathFor(path, c.Config.CacheDir), nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file.gfa]",
		Short: "Remove a sequence store, or all rendered SVGs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return clearRenderCache()
			}
			dir, err := c.storePathFor(args[0])
			if err != nil {
				return err
			}
			if !store.HasCache(dir) {
				printInfo("No committed store for %s", args[0])
				// Leftovers of an interrupted ingest are removed silently.
				return store.Remove(dir)
			}
			if err := store.Remove(dir); err != nil {
				return err
			}
			printSuccess("Cleared store")
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func clearRenderCache() error {
	dir, err := renderCacheDir()
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "resolve cache directory")
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	if n == 0 {
		printInfo("Render cache is empty")
		return nil
	}
	printSuccess("Cleared %d rendered SVGs", n)
	printDetail("Directory: %s", dir)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [file.gfa]",
		Short: "Print the store directory of a graph file, or the render cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				dir string
				err error
			)
			if len(args) == 0 {
				dir, err = renderCacheDir()
			} else {
				dir, err = c.storePathFor(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}
