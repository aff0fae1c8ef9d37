package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/config"
	"github.com/matzehuels/algotrace/pkg/pipeline"
	"github.com/matzehuels/algotrace/pkg/render"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	step    int    // step index
	last    bool   // render the final step instead of --step
	format  string // dot, svg, png or pdf
	output  string // output file; stdout for dot and svg when empty
	noCache bool
}

// renderCommand creates the render command, which draws one step of a trace
// with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <trace.json|scenario.toml>",
		Short: "Render one step of a trace as DOT, SVG, PNG or PDF",
		Example: `  algotrace render lcs.json --step 12 -f svg -o step12.svg
  algotrace render scenario.toml --last -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.step, "step", "s", 0, "step index to render")
	cmd.Flags().BoolVar(&opts.last, "last", false, "render the last step")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg (default), png, pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the trace cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := loadDocument(ctx, runner, path)
	if err != nil {
		return err
	}
	doc := res.Document
	index := opts.step
	if opts.last {
		index = doc.Steps.Len() - 1
	}

	prog := newProgress(logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering step %d...", index))
	if opts.format != render.FormatDOT {
		spin.Start()
	}
	data, err := runner.RenderStep(ctx, doc, res.Key, index, opts.format)
	if opts.format != render.FormatDOT {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered step %d of %s %s", index, doc.Engine, doc.Operation))

	out := opts.output
	if out == "" {
		if opts.format == render.FormatDOT || opts.format == render.FormatSVG {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		out = fmt.Sprintf("%s-%s-step%d.%s", doc.Engine, doc.Operation, index, opts.format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Rendered step %d", index)
	printFile(cmd.OutOrStdout(), out)
	return nil
}

// loadDocument runs a TOML scenario or imports a JSON trace. Only scenario
// runs carry a cache key.
func loadDocument(ctx context.Context, runner *pipeline.Runner, path string) (*pipeline.Result, error) {
	if filepath.Ext(path) == ".toml" {
		opts, err := config.LoadScenario(path)
		if err != nil {
			return nil, err
		}
		return runner.Execute(ctx, opts)
	}
	doc, err := trace.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	return &pipeline.Result{Document: doc}, nil
}
