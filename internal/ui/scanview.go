package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/reclaim/internal/clean"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

// ScanFunc runs a scan under ctx. It must close its event channel when it
// returns so the view stops listening.
type ScanFunc func(ctx context.Context) rules.ScanResult

// ─── Messages ────────────────────────────────────────────────────────────────

type eventMsg clean.Event

type scanDoneMsg struct {
	result rules.ScanResult
}

func waitForEvent(ch <-chan clean.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// ─── Model ───────────────────────────────────────────────────────────────────

// ScanModel shows which rule is being measured while a scan runs. Ctrl+C,
// q or Esc cancel the scan; the model quits once the scan has returned.
type ScanModel struct {
	spinner    spinner.Model
	bar        progress.Model
	events     <-chan clean.Event
	run        ScanFunc
	ctx        context.Context
	cancel     context.CancelFunc
	current    clean.Event
	started    bool
	cancelling bool
	done       bool
	width      int

	Result rules.ScanResult
}

// NewScanModel prepares a view for run, which reports progress on events.
func NewScanModel(ctx context.Context, events <-chan clean.Event, run ScanFunc) ScanModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)
	return ScanModel{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		events:  events,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		width:   80,
	}
}

func (m ScanModel) Init() tea.Cmd {
	ctx, run := m.ctx, m.run
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return scanDoneMsg{result: run(ctx)} },
		waitForEvent(m.events),
	)
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-10))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelling = true
			m.cancel()
		}
		return m, nil

	case eventMsg:
		m.current = clean.Event(msg)
		m.started = true
		var pct float64
		if msg.Total > 0 {
			pct = float64(msg.Index) / float64(msg.Total)
		}
		return m, tea.Batch(m.bar.SetPercent(pct), waitForEvent(m.events))

	case scanDoneMsg:
		m.Result = msg.result
		m.done = true
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m ScanModel) View() string {
	if m.done {
		return ""
	}

	var s strings.Builder
	s.WriteString(m.spinner.View())
	s.WriteString(" ")
	switch {
	case m.cancelling:
		s.WriteString(lipgloss.NewStyle().Foreground(ColorWarning).Render("Cancelling…"))
	case m.started:
		s.WriteString(fmt.Sprintf("Scanning %s ", titleStyle.Render(m.current.Title)))
		s.WriteString(mutedStyle.Render(fmt.Sprintf("(%d/%d)", m.current.Index+1, m.current.Total)))
	default:
		s.WriteString("Preparing scan…")
	}
	s.WriteString("\n\n  ")
	s.WriteString(m.bar.View())
	s.WriteString("\n")
	if m.current.Path != "" && !m.cancelling {
		s.WriteString("  ")
		s.WriteString(mutedStyle.Render(truncate(m.current.Path, max(10, m.width-4))))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("  ctrl+c / q to cancel"))
	s.WriteString("\n")
	return s.String()
}

// RunScan shows the scan view until run returns and hands back its result.
func RunScan(ctx context.Context, events <-chan clean.Event, run ScanFunc) (rules.ScanResult, error) {
	final, err := tea.NewProgram(NewScanModel(ctx, events, run)).Run()
	if err != nil {
		return rules.ScanResult{}, fmt.Errorf("scan view: %w", err)
	}
	return final.(ScanModel).Result, nil
}
