package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/review"
	"github.com/colonyops/driftwatch/internal/core/styles"
	"github.com/colonyops/driftwatch/internal/driftwatch"
)

// riskyThreshold is the score at or below which the risky filter and jump
// consider a change worth forcing into view.
const riskyThreshold = 0.4

type ReviewCmd struct {
	flags *Flags

	// flags
	capturePath string
	statsOnly   bool
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Walk captured changes hunk by hunk",
		UsageText: "driftwatch review [options]",
		Description: `Loads the capture written by 'driftwatch watch' and steps through its hunks.
Progress is saved to the session snapshot on quit and restored on the next
run, so a review can be resumed where it left off.

Commands at the prompt:
  a / r / s      accept, reject, or skip the current hunk and advance
  A / R          accept or reject every pending hunk in the current file
  n / p          next / previous hunk        N / P   next / previous file
  u              reset the current hunk to pending
  f <spec>       filter navigation: pending, risky, ai, or clear
  j              jump to the first pending hunk
  risky          jump to the first risky change
  stats          show progress
  q              save and quit`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "capture",
				Usage:       "capture file to review (defaults to <data-dir>/changes.json)",
				Destination: &cmd.capturePath,
			},
			&cli.BoolFlag{
				Name:        "stats",
				Usage:       "print review progress and exit",
				Destination: &cmd.statsOnly,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReviewCmd) run(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App
	out := c.Root().Writer

	capturePath := cmd.capturePath
	if capturePath == "" {
		capturePath = app.CapturePath()
	}
	capture, err := driftwatch.LoadCapture(capturePath)
	if err != nil {
		return fmt.Errorf("no reviewable capture: %w", err)
	}

	entries := capture.ReviewEntries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "nothing to review")
		return nil
	}

	sess := review.NewSession(entries)
	snapshotPath := app.Config.SessionPath()
	if _, statErr := os.Stat(snapshotPath); statErr == nil {
		discarded, loadErr := sess.Load(snapshotPath)
		switch {
		case loadErr != nil:
			fmt.Fprintf(out, "warning: could not restore session (%v), starting fresh\n", loadErr)
		case discarded > 0:
			fmt.Fprintf(out, "restored session, dropped %d stale decision(s)\n", discarded)
		default:
			fmt.Fprintln(out, "restored session")
		}
	}

	if cmd.statsOnly {
		printStats(out, sess.Stats())
		return nil
	}

	if err := cmd.loop(out, sess); err != nil {
		return err
	}

	if err := sess.Save(snapshotPath); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(out, "session saved to %s\n", snapshotPath)
	return nil
}

// loop drives the interactive prompt until the operator quits or input ends.
func (cmd *ReviewCmd) loop(out io.Writer, sess *review.Session) error {
	cmd.render(out, sess)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "q" {
			return nil
		}
		cmd.handle(out, sess, input)
	}
}

func (cmd *ReviewCmd) handle(out io.Writer, sess *review.Session, input string) {
	redraw := true
	switch fields := strings.Fields(input); fields[0] {
	case "a":
		cmd.decide(out, sess, review.StatusAccepted)
	case "r":
		cmd.decide(out, sess, review.StatusRejected)
	case "s":
		cmd.decide(out, sess, review.StatusSkipped)
	case "A":
		cmd.decideFile(out, sess, review.StatusAccepted)
	case "R":
		cmd.decideFile(out, sess, review.StatusRejected)
	case "n":
		if !sess.Advance(review.Forward, review.ByHunk) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no further hunk matches the filter"))
			redraw = false
		}
	case "p":
		if !sess.Advance(review.Backward, review.ByHunk) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no earlier hunk matches the filter"))
			redraw = false
		}
	case "N":
		if !sess.Advance(review.Forward, review.ByFile) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no further file matches the filter"))
			redraw = false
		}
	case "P":
		if !sess.Advance(review.Backward, review.ByFile) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no earlier file matches the filter"))
			redraw = false
		}
	case "u":
		if err := sess.ResetCurrent(); err != nil {
			fmt.Fprintf(out, "reset: %v\n", err)
		}
	case "f":
		spec := ""
		if len(fields) > 1 {
			spec = fields[1]
		}
		cmd.setFilter(out, sess, spec)
		redraw = false
	case "j":
		if !sess.JumpToFirst(func(_ review.FileEntry, _ diff.Hunk, status review.Status) bool {
			return status == review.StatusPending
		}) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no pending hunks"))
			redraw = false
		}
	case "risky":
		if !sess.JumpToFirst(func(file review.FileEntry, _ diff.Hunk, _ review.Status) bool {
			return file.Event.Confidence != nil && file.Event.Confidence.Score <= riskyThreshold
		}) {
			fmt.Fprintln(out, styles.MutedStyle.Render("no risky changes"))
			redraw = false
		}
	case "stats":
		printStats(out, sess.Stats())
		redraw = false
	default:
		fmt.Fprintf(out, "unknown command %q\n", fields[0])
		redraw = false
	}

	if redraw {
		cmd.render(out, sess)
	}
}

// decide applies outcome to the current hunk and advances past it.
func (cmd *ReviewCmd) decide(out io.Writer, sess *review.Session, outcome review.Status) {
	if err := sess.Decide(outcome); err != nil {
		if errors.Is(err, review.ErrAlreadyDecided) {
			fmt.Fprintln(out, styles.MutedStyle.Render("already decided; use 'u' to reset first"))
			return
		}
		fmt.Fprintf(out, "decide: %v\n", err)
		return
	}
	sess.Advance(review.Forward, review.ByHunk)
}

func (cmd *ReviewCmd) decideFile(out io.Writer, sess *review.Session, outcome review.Status) {
	decided, err := sess.DecideFile(outcome)
	if err != nil {
		fmt.Fprintf(out, "decide file: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%d hunk(s) %s\n", decided, outcome)
	sess.Advance(review.Forward, review.ByFile)
}

// setFilter translates a short spec into a session filter.
func (cmd *ReviewCmd) setFilter(out io.Writer, sess *review.Session, spec string) {
	switch spec {
	case "clear", "":
		sess.ClearFilter()
		fmt.Fprintln(out, "filter cleared")
	case "pending":
		_ = sess.SetFilter(review.Filter{Statuses: []review.Status{review.StatusPending}})
		fmt.Fprintln(out, "showing pending hunks only")
	case "risky":
		threshold := riskyThreshold
		_ = sess.SetFilter(review.Filter{MaxConfidence: &threshold})
		fmt.Fprintln(out, "showing risky changes only")
	case "ai":
		_ = sess.SetFilter(review.Filter{Origins: []change.Origin{change.OriginAI, change.OriginTool}})
		fmt.Fprintln(out, "showing automated changes only")
	default:
		fmt.Fprintf(out, "unknown filter %q (pending, risky, ai, clear)\n", spec)
	}
}

// render draws the current file header and hunk.
func (cmd *ReviewCmd) render(out io.Writer, sess *review.Session) {
	file, hunk, ok := sess.Current()
	if !ok {
		fmt.Fprintln(out, "no hunks to review")
		return
	}

	cursor := sess.Cursor()
	status := sess.Status(file.Path(), hunk.ID)

	fmt.Fprintln(out)
	header := fmt.Sprintf("%s  [file %d/%d, hunk %d/%d]",
		file.Path(), cursor.File+1, len(sess.Files()), cursor.Hunk+1, len(file.Result.Hunks))
	fmt.Fprintln(out, styles.HeaderStyle.Render(header))

	meta := fmt.Sprintf("%s  status=%s", styles.Kind(file.Event.Kind), status)
	if conf := file.Event.Confidence; conf != nil {
		meta += fmt.Sprintf("  %s %.2f", styles.Level(conf.Level), conf.Score)
	}
	fmt.Fprintln(out, meta)

	fmt.Fprintln(out, styles.MutedStyle.Render(
		fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)))
	cmd.renderLines(out, file.Path(), hunk)
}

// renderLines prints hunk lines, syntax highlighting context lines and
// coloring added/removed lines by kind.
func (cmd *ReviewCmd) renderLines(out io.Writer, path string, hunk diff.Hunk) {
	plain := make([]string, len(hunk.Lines))
	for i, line := range hunk.Lines {
		plain[i] = strings.TrimSuffix(line.Text, "\n")
	}
	highlighted := cmd.flags.App.Highlighter.Lines(path, plain)

	for i, line := range hunk.Lines {
		switch line.Kind {
		case diff.LineAdded:
			fmt.Fprintln(out, styles.AddedStyle.Render("+"+plain[i]))
		case diff.LineRemoved:
			fmt.Fprintln(out, styles.RemovedStyle.Render("-"+plain[i]))
		default:
			var b strings.Builder
			b.WriteString(" ")
			for _, span := range highlighted[i].Spans {
				if span.Color == "" {
					b.WriteString(span.Text)
					continue
				}
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(span.Color)).Render(span.Text))
			}
			fmt.Fprintln(out, b.String())
		}
	}
}

func printStats(out io.Writer, st review.Stats) {
	fmt.Fprintf(out, "%d hunks: %d accepted, %d rejected, %d skipped, %d pending (%.0f%% decided)\n",
		st.Total, st.Accepted, st.Rejected, st.Skipped, st.Pending, st.Percent())
}
