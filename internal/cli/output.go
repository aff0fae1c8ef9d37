package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/pipeline"
	"github.com/matzehuels/algotrace/pkg/playback"
	"github.com/matzehuels/algotrace/pkg/render/text"
	"github.com/matzehuels/algotrace/pkg/trace"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// outputOpts are the output flags shared by trace and run.
type outputOpts struct {
	format  string // text or json
	output  string // file path; stdout when empty
	noCache bool   // skip the trace cache entirely
	refresh bool   // re-run and overwrite the cached trace
	animate bool   // pace text output at the playback interval
}

func (o *outputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", formatText, "output format: text, json")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the trace cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-run even when the trace is cached")
	cmd.Flags().BoolVar(&o.animate, "animate", false, "print text steps one at a time")
}

func (o *outputOpts) validate() error {
	switch o.format {
	case formatText, formatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'text' or 'json')", o.format)
}

// runAndWrite executes opts through a configured runner and writes the
// resulting document.
func (c *CLI) runAndWrite(cmd *cobra.Command, opts pipeline.Options, out *outputOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, out.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Refresh = opts.Refresh || out.refresh
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	delay := time.Duration(0)
	if out.animate {
		s := playback.NewSession(res.Document.Steps, cfg.Playback.Interval)
		s.SetSpeed(cfg.Playback.Speed)
		delay = s.Interval()
	}
	return writeDocument(ctx, cmd.OutOrStdout(), res.Document, res.CacheHit, out, delay)
}

// writeDocument writes doc as JSON or as text steps followed by a summary.
// A positive delay paces the text steps.
func writeDocument(ctx context.Context, w io.Writer, doc *trace.Document, cached bool, out *outputOpts, delay time.Duration) error {
	if out.format == formatJSON {
		if out.output == "" {
			return trace.WriteJSON(doc, w)
		}
		if err := trace.ExportJSON(doc, out.output); err != nil {
			return err
		}
		printSuccess(w, "Recorded %s %s", doc.Engine, doc.Operation)
		printStats(w, doc.Steps.Len(), cached)
		printFile(w, out.output)
		printNextStep(w, "Replay it", "algotrace play "+out.output)
		return nil
	}

	dst := w
	if out.output != "" {
		f, err := os.Create(out.output)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	err := playback.Animate(ctx, doc.Steps.All(), delay, func(_ int, s trace.Step) error {
		_, err := fmt.Fprintln(dst, text.Step(s))
		return err
	})
	if err != nil {
		return err
	}

	printKeyValue(dst, "engine", doc.Engine+" "+doc.Operation)
	printKeyValue(dst, "result", formatResult(doc.Result))
	printStats(dst, doc.Steps.Len(), cached)
	if dst != w {
		printFile(w, out.output)
	}
	return nil
}

func formatResult(v any) string {
	if v == nil {
		return "-"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
