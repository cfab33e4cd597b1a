package clean

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/lakshaymaurya-felt/reclaim/internal/envutil"
	"github.com/lakshaymaurya-felt/reclaim/internal/match"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/uninstall"
)

type mode int

const (
	modeScan mode = iota
	modeClean
)

func (m mode) String() string {
	if m == modeClean {
		return "clean"
	}
	return "scan"
}

// evaluate runs one rule to a terminal status. cancelled is true when ctx
// interrupted the rule part way; rep then holds what was done so far.
func (e *Engine) evaluate(ctx context.Context, r rules.Rule, m mode) (rep rules.ItemReport, cancelled bool) {
	rep = rules.NewItemReport(r)
	log := e.log.With().Str("rule", r.ID).Str("mode", m.String()).Logger()
	log.Debug().Str("type", string(r.Type)).Msg("evaluating rule")

	if r.RequiresAdmin && !e.opts.IsAdmin {
		rep.Status = rules.StatusBlocked
		rep.Message = rules.BlockedReason
		return rep, false
	}

	switch r.Type {
	case rules.TypePath, rules.TypePattern:
		cancelled = e.evalPath(ctx, r, m, &rep)
	case rules.TypeSpecial:
		e.evalTool(r, m, &rep)
	case rules.TypeRegistry:
		e.evalRegistry(r, m, &rep)
	case rules.TypeAppResidue:
		cancelled = e.evalResidue(ctx, r, m, &rep)
	default:
		rep.Status = rules.StatusUnknown
		rep.Message = "Unknown rule type"
	}

	log.Info().
		Str("status", string(rep.Status)).
		Int64("bytes", rep.TotalBytes).
		Int64("files", rep.FileCount).
		Bool("cancelled", cancelled).
		Msg("rule evaluated")
	return rep, cancelled
}

func statusFor(hadError bool) rules.Status {
	if hadError {
		return rules.StatusPartial
	}
	return rules.StatusOK
}

// ─── Path / Pattern ──────────────────────────────────────────────────────────

func (e *Engine) evalPath(ctx context.Context, r rules.Rule, m mode, rep *rules.ItemReport) bool {
	if strings.TrimSpace(r.Path) == "" {
		rep.Status = rules.StatusMissingPath
		return false
	}

	base := envutil.ExpandWindowsEnv(r.Path)
	if _, err := os.Stat(base); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Status = rules.StatusMissing
			return false
		}
		rep.Status = rules.StatusError
		rep.Message = err.Error()
		return false
	}
	rep.Drive = driveOf(base)

	matcher := match.Compile(r.Pattern)
	if err := matcher.Failed(); err != nil {
		e.log.Warn().Err(err).Str("rule", r.ID).Str("pattern", r.Pattern).
			Msg("invalid pattern, matching every file")
	}

	act := actMeasure
	if m == modeClean {
		act = actDelete
		if r.Action == rules.ActionRecycle {
			act = actRecycle
		}
	}

	res := e.walker.walk(ctx, base, matcher, ThresholdsFor(r), e.opts.Now(), act)
	rep.TotalBytes = res.Bytes
	rep.FileCount = res.Files
	rep.Status = statusFor(res.HadError)
	return res.Cancelled
}

// ─── Special (tool call) ─────────────────────────────────────────────────────

func (e *Engine) evalTool(r rules.Rule, m mode, rep *rules.ItemReport) {
	if m == modeScan {
		rep.Status = rules.StatusSkipped
		rep.Message = "Tool rules run only during clean"
		return
	}
	if r.Action != rules.ActionToolCall {
		rep.Status = rules.StatusSkipped
		rep.Message = "Action not supported for special rule"
		return
	}
	if strings.TrimSpace(r.ToolCmd) == "" {
		rep.Status = rules.StatusError
		rep.Message = "Missing tool command"
		return
	}

	e.log.Debug().Str("rule", r.ID).Str("cmd", r.ToolCmd).Msg("running tool")
	out, err := e.opts.RunTool.Run(r.ToolCmd)
	if err != nil {
		rep.Status = rules.StatusError
		rep.Message = toolFailure(err, out)
		return
	}
	rep.Status = rules.StatusOK
}

// ─── Registry ────────────────────────────────────────────────────────────────

func (e *Engine) evalRegistry(r rules.Rule, m mode, rep *rules.ItemReport) {
	if !e.opts.Registry.Supported() {
		rep.Status = rules.StatusUnsupported
		rep.Message = "Registry cleanup only supported on Windows"
		return
	}

	orphans, err := uninstall.FindOrphans(e.opts.Registry)
	if err != nil {
		rep.Status = rules.StatusError
		rep.Message = err.Error()
		return
	}

	if m == modeScan {
		rep.FileCount = int64(len(orphans))
		rep.Status = rules.StatusOK
		rep.Message = uninstall.OrphanScanAdvisory
		return
	}

	hadError := false
	for _, reg := range orphans {
		if err := e.opts.Registry.DeleteSubtree(reg); err != nil {
			hadError = true
			e.log.Warn().Err(err).Str("rule", r.ID).Str("key", reg.ID()).Msg("cannot delete registration")
			continue
		}
		e.log.Warn().Str("rule", r.ID).Str("key", reg.ID()).Msg("deleted orphan registration")
		rep.FileCount++
	}
	rep.Status = statusFor(hadError)
	rep.Message = uninstall.OrphanAdvisory
}

// ─── App Residue ─────────────────────────────────────────────────────────────

func (e *Engine) evalResidue(ctx context.Context, r rules.Rule, m mode, rep *rules.ItemReport) bool {
	if !e.opts.Registry.Supported() {
		rep.Status = rules.StatusUnsupported
		rep.Message = "Residue detection only supported on Windows"
		return false
	}

	cutoff := e.opts.ResidueCutoff
	if r.AgeThresholdDays != nil && *r.AgeThresholdDays >= 0 {
		cutoff = rules.Days(*r.AgeThresholdDays)
	}

	det := uninstall.ResidueDetector{
		Store: e.opts.Registry,
		Roots: e.opts.ResidueRoots,
		Now:   e.opts.Now,
	}
	candidates, err := det.Candidates(cutoff)
	if err != nil {
		rep.Status = rules.StatusError
		rep.Message = err.Error()
		return false
	}

	rep.Drive = commonDrive(candidates)
	rep.Message = uninstall.ResidueScanAdvisory
	if m == modeClean {
		rep.Message = uninstall.ResidueAdvisory
	}

	hadError := false
	now := e.opts.Now()
	for _, dir := range candidates {
		res := e.walker.measure(ctx, dir, now)
		rep.TotalBytes += res.Bytes
		rep.FileCount += res.Files
		if res.HadError {
			hadError = true
		}
		if res.Cancelled {
			rep.Status = statusFor(hadError)
			return true
		}

		if m == modeClean {
			if err := os.RemoveAll(dir); err != nil {
				hadError = true
				e.log.Warn().Err(err).Str("rule", r.ID).Str("dir", dir).Msg("cannot remove residue")
				continue
			}
			e.log.Warn().Str("rule", r.ID).Str("dir", dir).Msg("removed residue folder")
		}
	}
	rep.Status = statusFor(hadError)
	return false
}
