// Package ui renders scan and clean results for the terminal: a live scan
// view built on bubbletea and static report tables styled with lipgloss.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorCaution = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMuted)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	sizeStyle   = lipgloss.NewStyle().Foreground(ColorInfo)
)

// StatusStyle colors a status label.
func StatusStyle(s rules.Status) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case rules.StatusOK:
		return base.Foreground(ColorSuccess)
	case rules.StatusPartial:
		return base.Foreground(ColorWarning)
	case rules.StatusBlocked, rules.StatusUnsupported:
		return base.Foreground(ColorCaution)
	case rules.StatusError, rules.StatusUnknown:
		return base.Foreground(ColorDanger)
	default:
		return base.Foreground(ColorMuted)
	}
}

// RiskStyle colors a risk label.
func RiskStyle(r rules.Risk) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch r {
	case rules.RiskHigh:
		return base.Foreground(ColorDanger).Bold(true)
	case rules.RiskMedium:
		return base.Foreground(ColorWarning)
	default:
		return base.Foreground(ColorSuccess)
	}
}
