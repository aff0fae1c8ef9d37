package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/pipeline"
)

// enginesCommand creates the engines command, which lists every engine and
// its operations. The first operation of each engine is its default.
func (c *CLI) enginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List engines and their operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), enginesTable(pipeline.Engines))
			return nil
		},
	}
}

func enginesTable(engines []pipeline.EngineInfo) string {
	rows := make([][]string, len(engines))
	for i, e := range engines {
		rows[i] = []string{e.Name, strings.Join(e.Operations, ", "), e.Description}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Engine", "Operations", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	return t.Render() + "\n"
}
