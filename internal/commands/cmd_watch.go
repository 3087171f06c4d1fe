package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/pipeline"
	"github.com/colonyops/driftwatch/internal/core/styles"
	"github.com/colonyops/driftwatch/internal/driftwatch"
)

type WatchCmd struct {
	flags *Flags

	// flags
	capturePath string
	noCapture   bool
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory tree and score changes as they settle",
		UsageText: "driftwatch watch [options]",
		Description: `Watches the configured root, coalesces bursts of filesystem events into
logical changes, diffs each change against the previously seen content, and
prints a risk-scored summary line per change.

On exit (Ctrl-C) the finalized changes are written to a capture file for
'driftwatch review' and 'driftwatch export'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "capture",
				Usage:       "path for the capture file (defaults to <data-dir>/changes.json)",
				Destination: &cmd.capturePath,
			},
			&cli.BoolFlag{
				Name:        "no-capture",
				Usage:       "do not write a capture file on exit",
				Destination: &cmd.noCapture,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App

	src, err := app.NewSource()
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p := app.NewPipeline()
	go p.Run(ctx, src.Events())

	out := c.Root().Writer
	fmt.Fprintf(out, "watching %s (algorithm=%s, debounce=%s)\n",
		app.Config.Root, app.Config.Diff.Algorithm, app.Config.Watcher.Debounce())

	var items []pipeline.Item
	maxEvents := app.Config.Watcher.MaxEvents
	for item := range p.Items() {
		items = append(items, item)
		if maxEvents > 0 && len(items) > maxEvents {
			items = items[len(items)-maxEvents:]
		}
		printItem(out, item)
	}

	if cmd.noCapture || len(items) == 0 {
		return nil
	}

	capturePath := cmd.capturePath
	if capturePath == "" {
		capturePath = app.CapturePath()
	}
	if err := driftwatch.SaveCapture(capturePath, app.Config.Root, items); err != nil {
		return fmt.Errorf("save capture: %w", err)
	}
	fmt.Fprintf(out, "\ncaptured %d change(s) to %s\n", len(items), capturePath)
	return nil
}

// printItem renders one finalized change as a single summary line.
func printItem(out io.Writer, item pipeline.Item) {
	var b strings.Builder
	b.WriteString(styles.Kind(item.Event.Kind))
	b.WriteString("  ")
	b.WriteString(styles.PathStyle.Render(item.Event.Path))

	if item.Diff.Available() {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("  +%d -%d", item.Diff.Stats.Added, item.Diff.Stats.Removed)))
	} else {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  (diff unavailable: %s)", item.Diff.Unavailable)))
	}

	if conf := item.Event.Confidence; conf != nil {
		b.WriteString(fmt.Sprintf("  %s %.2f", styles.Level(conf.Level), conf.Score))
		if len(conf.Reasons) > 0 {
			b.WriteString(styles.MutedStyle.Render("  " + strings.Join(conf.Reasons, "; ")))
		}
	}

	if item.Event.Tool != "" {
		b.WriteString(styles.MutedStyle.Render("  via " + item.Event.Tool))
	} else if item.Event.Origin != "" && item.Event.Origin != change.OriginUnknown {
		b.WriteString(styles.MutedStyle.Render("  origin " + string(item.Event.Origin)))
	}

	if item.Event.Note != "" {
		b.WriteString(styles.MutedStyle.Render("  note: " + item.Event.Note))
	}

	fmt.Fprintln(out, b.String())
}
