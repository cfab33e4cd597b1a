// Package clean evaluates cleanup rules. An Engine measures what each rule
// would reclaim (Scan) or applies the rule's action (Clean), and folds the
// per-rule outcomes into category and drive summaries.
package clean

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/trash"
	"github.com/lakshaymaurya-felt/reclaim/internal/uninstall"
)

// Trasher moves a file to the platform's reversible trash.
type Trasher interface {
	Submit(path string) error
}

// Phase tags progress events.
type Phase string

const (
	PhaseScan  Phase = "scan"
	PhaseClean Phase = "clean"
)

// Event is emitted before each rule is evaluated.
type Event struct {
	Phase Phase  `json:"phase"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path,omitempty"`
}

// Options configures an Engine.
type Options struct {
	// IsAdmin is the elevation snapshot used for every rule in a request.
	IsAdmin bool

	// Workers bounds file-level parallelism inside one rule's walk.
	// Zero means runtime.NumCPU().
	Workers int

	Registry uninstall.Store
	Trash    Trasher
	RunTool  ToolRunner

	// ResidueRoots are searched by app_residue rules.
	ResidueRoots []string

	// ResidueCutoff applies to app_residue rules that carry no age
	// threshold. Zero means uninstall.DefaultResidueCutoff.
	ResidueCutoff time.Duration

	Now func() time.Time

	// Events receives progress notifications. Sends never block; events
	// are dropped when the channel is full.
	Events chan<- Event

	Logger *zerolog.Logger
}

// Engine evaluates rules. Requests are independent: nothing is cached
// between calls.
type Engine struct {
	opts   Options
	walker *walker
	log    zerolog.Logger
}

// New returns an Engine. Unset collaborators get platform defaults.
func New(opts Options) *Engine {
	if opts.Registry == nil {
		opts.Registry = uninstall.NewRegistryStore()
	}
	if opts.RunTool == nil {
		opts.RunTool = ShellRunner{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ResidueCutoff <= 0 {
		opts.ResidueCutoff = uninstall.DefaultResidueCutoff
	}
	if opts.ResidueRoots == nil {
		opts.ResidueRoots = uninstall.DefaultResidueRoots()
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Trash == nil {
		opts.Trash = trash.New()
	}

	return &Engine{
		opts:   opts,
		walker: newWalker(opts.Workers, opts.Trash, log),
		log:    log,
	}
}

// emit delivers ev without blocking.
func (e *Engine) emit(ev Event) {
	if e.opts.Events == nil {
		return
	}
	select {
	case e.opts.Events <- ev:
	default:
	}
}

// Scan measures every rule in order without modifying anything. If ctx is
// cancelled, the result holds the rules completed so far.
func (e *Engine) Scan(ctx context.Context, rs []rules.Rule) rules.ScanResult {
	res := rules.ScanResult{Items: make([]rules.RuleScan, 0, len(rs))}

	for i, r := range rs {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		e.emit(Event{Phase: PhaseScan, Index: i, Total: len(rs), ID: r.ID, Title: r.Title, Path: r.Path})

		rep, cancelled := e.evaluate(ctx, r, modeScan)
		if cancelled {
			res.Cancelled = true
			break
		}
		res.Items = append(res.Items, scanItem(rep))
	}

	e.log.Info().
		Int("rules", len(res.Items)).
		Bool("cancelled", res.Cancelled).
		Msg("scan finished")
	return res
}

// Clean applies the selected rules in selection order. Ids that are not in
// rs, and repeated ids, are ignored. If ctx is cancelled, rules not yet
// started are left out of the report; a rule interrupted mid-walk is
// reported as partial.
func (e *Engine) Clean(ctx context.Context, rs []rules.Rule, selected []string) rules.Report {
	byID := make(map[string]rules.Rule, len(rs))
	for _, r := range rs {
		byID[r.ID] = r
	}

	var queue []rules.Rule
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		r, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, r)
	}

	report := rules.Report{Items: make([]rules.ItemReport, 0, len(queue))}
	for i, r := range queue {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		e.emit(Event{Phase: PhaseClean, Index: i, Total: len(queue), ID: r.ID, Title: r.Title, Path: r.Path})

		rep, cancelled := e.evaluate(ctx, r, modeClean)
		if cancelled {
			rep.Status = rules.StatusPartial
			rep.Message = "Cancelled"
			report.Cancelled = true
			report.Items = append(report.Items, rep)
			break
		}
		report.Items = append(report.Items, rep)
	}

	report.Summary = Summarize(report.Items)
	e.log.Info().
		Int("rules", len(report.Items)).
		Int64("bytes", report.Summary.TotalBytes).
		Int64("files", report.Summary.TotalFiles).
		Bool("cancelled", report.Cancelled).
		Msg("clean finished")
	return report
}

func scanItem(rep rules.ItemReport) rules.RuleScan {
	item := rules.RuleScan{
		ID:         rep.ID,
		Title:      rep.Title,
		Category:   rep.Category,
		TotalBytes: rep.TotalBytes,
		FileCount:  rep.FileCount,
		Status:     rep.Status,
		Message:    rep.Message,
		Drive:      rep.Drive,
	}
	if rep.Status == rules.StatusBlocked {
		item.Blocked = true
		item.BlockedReason = rep.Message
	}
	return item
}
