package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run raises the log level for --verbose and attaches the
// logger to the command context, where subcommands pick it up with
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Algotrace records step-by-step traces of classic algorithms",
		Long:         `Algotrace runs instrumented data-structure and algorithm engines (B-Tree, BST, AVL, trie, segment tree, topological sort, Shunting-Yard, LCS) and records every micro-operation as a replayable step.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/algotrace/config.toml)")

	root.AddCommand(c.traceCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.enginesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
