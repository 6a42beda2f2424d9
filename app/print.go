package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/halidom/respite/internal/session"
)

func printStatus(sess *session.Session) {
	pterm.Printfln("State: %s", string(sess.State))

	if sess.State == session.Idle {
		return
	}

	pterm.Printfln("Started: %s", humanize.Time(sess.StartTime))
	pterm.Printfln("Focus time: %s", formatSeconds(sess.ElapsedTime))
	pterm.Printfln("Short breaks taken: %d", sess.ShortBreakCount)

	if sess.TotalPausedTime > 0 {
		pterm.Printfln(
			"Time paused: %s",
			formatSeconds(int(sess.TotalPausedTime.Seconds())),
		)
	}
}

func printStats(report *statsReport) {
	rows := pterm.TableData{
		{"Date", "Focus time", "Short breaks", "Long breaks", "Completed"},
	}

	for _, d := range report.Days {
		rows = append(rows, []string{
			d.Date,
			formatSeconds(d.Bucket.TotalFocusTime),
			fmt.Sprintf("%d", d.Bucket.ShortBreaksTaken),
			fmt.Sprintf("%d", d.Bucket.LongBreaksTaken),
			fmt.Sprintf("%d", d.Bucket.SessionsCompleted),
		})
	}

	err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	if err != nil {
		pterm.Error.Println(err)
	}

	pterm.Println()
	pterm.Printfln(
		"Today: %s focused, %d sessions completed",
		formatSeconds(report.Today.TotalFocusTime),
		report.Today.SessionsCompleted,
	)
	pterm.Printfln(
		"This week: %s focused, %d sessions completed",
		formatSeconds(report.Week.TotalFocusTime),
		report.Week.SessionsCompleted,
	)
}

// formatSeconds renders a second count as "2h 35m" (or "45s" below a
// minute).
func formatSeconds(secs int) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	return fmt.Sprintf("%dh %dm", hours, mins)
}
