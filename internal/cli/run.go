package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/config"
)

// runCommand creates the run command, which executes a TOML scenario file.
func (c *CLI) runCommand() *cobra.Command {
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "run <scenario.toml>",
		Short: "Run a scenario file and print its steps",
		Long: `Run the engine operation described by a TOML scenario file.

A scenario uses the same field names as the HTTP API:

  engine = "bst"
  operation = "delete"
  keys = [50, 30, 70, 60, 80]
  targets = [50]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			opts, err := config.LoadScenario(args[0])
			if err != nil {
				return err
			}
			return c.runAndWrite(cmd, opts, &out)
		},
	}
	out.register(cmd)

	return cmd
}
