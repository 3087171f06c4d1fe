package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/export"
	"github.com/colonyops/driftwatch/internal/core/review"
	"github.com/colonyops/driftwatch/internal/driftwatch"
)

type ExportCmd struct {
	flags *Flags

	// flags
	capturePath  string
	outputPath   string
	format       string
	acceptedOnly bool
}

// NewExportCmd creates a new export command.
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application.
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export captured changes as a patch or JSON report",
		UsageText: "driftwatch export [options]",
		Description: `Reads the capture written by 'driftwatch watch' and emits either a unified
patch of the captured diffs or a JSON report with confidence metadata.

With --accepted, only hunks accepted during 'driftwatch review' are included,
so the patch mirrors exactly what the review approved.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "capture",
				Usage:       "capture file to export (defaults to <data-dir>/changes.json)",
				Destination: &cmd.capturePath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.outputPath,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format: unified or json",
				Value:       "unified",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "accepted",
				Usage:       "include only hunks accepted in the review session",
				Destination: &cmd.acceptedOnly,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.format != "unified" && cmd.format != "json" {
		return fmt.Errorf("unknown format %q (expected unified or json)", cmd.format)
	}

	app := cmd.flags.App

	capturePath := cmd.capturePath
	if capturePath == "" {
		capturePath = app.CapturePath()
	}
	capture, err := driftwatch.LoadCapture(capturePath)
	if err != nil {
		return fmt.Errorf("no exportable capture: %w", err)
	}
	entries := capture.ReviewEntries()

	var sess *review.Session
	if cmd.acceptedOnly {
		sess = review.NewSession(entries)
		if _, err := sess.Load(app.Config.SessionPath()); err != nil {
			return fmt.Errorf("--accepted requires a review session: %w", err)
		}
	}

	out := io.Writer(c.Root().Writer)
	if cmd.outputPath != "" {
		f, err := os.Create(cmd.outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if cmd.format == "json" {
		return cmd.writeReport(out, entries, sess)
	}
	return cmd.writePatch(out, entries, sess)
}

func (cmd *ExportCmd) writePatch(out io.Writer, entries []review.FileEntry, sess *review.Session) error {
	for _, entry := range entries {
		if entry.Result == nil || !entry.Result.Available() {
			continue
		}
		hunks := entry.Result.Hunks
		if sess != nil {
			hunks = acceptedHunks(sess, entry.Path(), hunks)
		}
		if len(hunks) == 0 {
			continue
		}
		if err := export.PatchFile(out, entry.Path(), entry.Event.Kind, hunks); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *ExportCmd) writeReport(out io.Writer, entries []review.FileEntry, sess *review.Session) error {
	report := make([]export.Entry, 0, len(entries))
	for _, entry := range entries {
		var stats diff.Stats
		hunks := 0
		if entry.Result != nil && entry.Result.Available() {
			stats = entry.Result.Stats
			candidates := entry.Result.Hunks
			if sess != nil {
				candidates = acceptedHunks(sess, entry.Path(), candidates)
			}
			hunks = len(candidates)
		}
		if sess != nil && hunks == 0 {
			continue
		}
		report = append(report, export.Entry{Event: entry.Event, Stats: stats, Hunks: hunks})
	}
	return export.Report(out, report)
}

func acceptedHunks(sess *review.Session, path string, hunks []diff.Hunk) []diff.Hunk {
	return slices.DeleteFunc(slices.Clone(hunks), func(h diff.Hunk) bool {
		return sess.Status(path, h.ID) != review.StatusAccepted
	})
}
