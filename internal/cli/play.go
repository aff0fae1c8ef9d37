package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/playback"
	"github.com/matzehuels/algotrace/pkg/render/text"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// playOpts holds the command-line flags for the play command.
type playOpts struct {
	speed    float64
	autoplay bool
	plain    bool // print steps on a timer instead of the interactive view
	loop     bool // plain mode only
	noCache  bool
}

// playCommand creates the play command, an interactive step-through of a
// trace.
func (c *CLI) playCommand() *cobra.Command {
	var opts playOpts

	cmd := &cobra.Command{
		Use:   "play <trace.json|scenario.toml>",
		Short: "Step through a trace interactively",
		Long: `Step through a recorded trace.

Keys: space play/pause, ←/→ previous/next step, home/end first/last step,
+/- change speed, q quit.

With --plain the steps are printed one after another at the playback
interval, which works without a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd, args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "playback speed multiplier (default from config)")
	cmd.Flags().BoolVar(&opts.autoplay, "autoplay", false, "start playing immediately")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print steps on a timer without the interactive view")
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "restart from the first step (with --plain)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the trace cache")

	return cmd
}

func (c *CLI) runPlay(cmd *cobra.Command, path string, opts *playOpts) error {
	ctx := cmd.Context()
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

	session := playback.NewSession(doc.Steps, cfg.Playback.Interval)
	session.SetSpeed(cfg.Playback.Speed)
	if opts.speed > 0 {
		session.SetSpeed(opts.speed)
	}

	if opts.plain {
		out := cmd.OutOrStdout()
		player := &playback.Player{Loop: opts.loop}
		return player.Run(ctx, session, func(s trace.Step) {
			fmt.Fprintln(out, text.Step(s))
		})
	}

	if opts.autoplay {
		session.Play()
	}
	p := tea.NewProgram(NewPlayModel(doc, session),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}
