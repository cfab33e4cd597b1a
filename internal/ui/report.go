package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/volume"
)

// row is one line of a result table, independent of scan or clean.
type row struct {
	id, title, category string
	bytes, files        int64
	status              rules.Status
	message             string
}

// ScanTable renders the per-rule scan outcomes.
func ScanTable(res rules.ScanResult) string {
	rows := make([]row, 0, len(res.Items))
	for _, it := range res.Items {
		msg := it.Message
		if it.Blocked && msg == "" {
			msg = it.BlockedReason
		}
		rows = append(rows, row{it.ID, it.Title, it.Category, it.TotalBytes, it.FileCount, it.Status, msg})
	}
	out := renderRows("Scan results", rows)
	if res.Cancelled {
		out += "\n" + lipgloss.NewStyle().Foreground(ColorWarning).Render("  Scan cancelled; results are incomplete.") + "\n"
	}
	return out
}

// CleanTable renders the per-rule clean outcomes.
func CleanTable(rep rules.Report) string {
	rows := make([]row, 0, len(rep.Items))
	for _, it := range rep.Items {
		rows = append(rows, row{it.ID, it.Title, it.Category, it.TotalBytes, it.FileCount, it.Status, it.Message})
	}
	out := renderRows("Cleanup results", rows)
	if rep.Cancelled {
		out += "\n" + lipgloss.NewStyle().Foreground(ColorWarning).Render("  Cleanup cancelled before every rule ran.") + "\n"
	}
	return out
}

func renderRows(title string, rows []row) string {
	idW, titleW := len("RULE"), len("TITLE")
	for _, r := range rows {
		idW = max(idW, len(r.id))
		titleW = max(titleW, len(r.title))
	}
	titleW = min(titleW, 40)

	var s strings.Builder
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s  %-*s  %10s  %8s  %s",
		idW, "RULE", titleW, "TITLE", "SIZE", "FILES", "STATUS")))
	s.WriteString("\n")

	for _, r := range rows {
		fmt.Fprintf(&s, "  %-*s  %-*s  %s  %8d  %s",
			idW, r.id,
			titleW, truncate(r.title, titleW),
			sizeStyle.Render(fmt.Sprintf("%10s", core.FormatSize(r.bytes))),
			r.files,
			StatusStyle(r.status).Render(string(r.status)))
		if r.message != "" {
			s.WriteString(mutedStyle.Render("  " + r.message))
		}
		s.WriteString("\n")
	}
	return s.String()
}

// SummaryView renders totals and the category and drive breakdowns.
// drives, when non-nil, annotates drive buckets with free space.
func SummaryView(sum rules.Summary, drives map[string]volume.Volume) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Summary"))
	s.WriteString("\n\n")
	fmt.Fprintf(&s, "  Total  %s in %d files\n",
		sizeStyle.Render(core.FormatSize(sum.TotalBytes)), sum.TotalFiles)

	if len(sum.ByCategory) > 0 {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("  By category"))
		s.WriteString("\n")
		for _, b := range sum.ByCategory {
			s.WriteString(bucketLine(b, ""))
		}
	}
	if len(sum.ByDrive) > 0 {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("  By drive"))
		s.WriteString("\n")
		for _, b := range sum.ByDrive {
			note := ""
			if v, ok := drives[b.Key]; ok {
				note = fmt.Sprintf("%s free of %s", core.FormatSize(int64(v.Free)), core.FormatSize(int64(v.Total)))
			}
			s.WriteString(bucketLine(b, note))
		}
	}
	return s.String()
}

func bucketLine(b rules.SummaryBucket, note string) string {
	const barWidth = 20
	filled := int(b.Percent / 100 * barWidth)
	filled = max(0, min(barWidth, filled))
	bar := lipgloss.NewStyle().Foreground(ColorPrimary).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))

	key := b.Key
	if key == "" {
		key = "(none)"
	}
	line := fmt.Sprintf("  %-12s %s %5.1f%%  %10s  %d files", key, bar, b.Percent, core.FormatSize(b.Bytes), b.Files)
	if note != "" {
		line += mutedStyle.Render("  " + note)
	}
	return line + "\n"
}

// RulesTable renders the catalog with each rule's blocked state.
func RulesTable(views []rules.View) string {
	idW := len("RULE")
	for _, v := range views {
		idW = max(idW, len(v.ID))
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s  %-11s  %-8s  %-6s  %s",
		idW, "RULE", "TYPE", "CATEGORY", "RISK", "TITLE")))
	s.WriteString("\n")
	for _, v := range views {
		state := ""
		switch {
		case !v.Enabled:
			state = mutedStyle.Render("  (disabled)")
		case v.Blocked:
			state = lipgloss.NewStyle().Foreground(ColorCaution).Render("  (" + v.BlockedReason + ")")
		}
		fmt.Fprintf(&s, "  %-*s  %-11s  %-8s  %s  %s%s\n",
			idW, v.ID, v.Type, truncate(v.Category, 8),
			RiskStyle(v.Risk).Render(fmt.Sprintf("%-6s", v.Risk)),
			v.Title, state)
	}
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
