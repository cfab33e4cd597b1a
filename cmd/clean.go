package cmd

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/clean"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var (
	cleanAll     bool
	cleanDefault bool
	cleanJSON    bool
	cleanYes     bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [rule-id...]",
	Short: "Free up disk space",
	Long: `Apply the selected rules in the order given. Rules are chosen by id,
with --default (rules checked by default) or with --all (every enabled rule).
High-risk rules need confirmation unless --yes is passed.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Clean every enabled rule")
	cleanCmd.Flags().BoolVar(&cleanDefault, "default", false, "Clean the rules checked by default")
	cleanCmd.Flags().BoolVar(&cleanJSON, "json", false, "Output the report as JSON")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Do not ask before cleaning high-risk rules")
}

var errNothingSelected = errors.New("no rules selected: pass rule ids, --default or --all")

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rs, err := st.ListRules(ctx)
	if err != nil {
		return err
	}
	selected := selectRules(rs, args, cleanAll, cleanDefault)
	if len(selected) == 0 {
		return errNothingSelected
	}

	if risky := highRisk(rs, selected); len(risky) > 0 && !cleanYes {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("high-risk rules selected (%v): pass --yes to proceed", risky)
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
			fmt.Sprintf("Selected rules include high-risk cleanups %v. Continue?", risky))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		}
	}

	var rep rules.Report
	if cleanJSON || !isTerminal(os.Stderr) {
		rep = newEngine(nil).Clean(ctx, rs, selected)
	} else {
		rep = cleanWithProgress(cmd, rs, selected)
	}

	log.Info().
		Int64("bytes", rep.Summary.TotalBytes).
		Int64("files", rep.Summary.TotalFiles).
		Bool("cancelled", rep.Cancelled).
		Msg("Cleanup finished")

	out := cmd.OutOrStdout()
	if cleanJSON {
		return writeJSON(out, rep)
	}
	printResults(ctx, out, st, ui.CleanTable(rep), rep.Summary)
	return nil
}

// cleanWithProgress runs the clean while a progress bar on stderr follows
// the engine's events.
func cleanWithProgress(cmd *cobra.Command, rs []rules.Rule, selected []string) rules.Report {
	bar := progressbar.NewOptions(len(selected),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Cleaning...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	events := make(chan clean.Event, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			bar.Describe("[cyan][bold]" + ev.Title + "[reset]")
			_ = bar.Set(ev.Index)
		}
	}()

	rep := newEngine(events).Clean(cmd.Context(), rs, selected)
	close(events)
	wg.Wait()
	if !rep.Cancelled {
		_ = bar.Finish()
	} else {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return rep
}

// selectRules resolves the requested ids. Explicit ids keep their order and
// come first; --default and --all append catalog rules not yet named.
func selectRules(rs []rules.Rule, ids []string, all, defaults bool) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		add(id)
	}
	for _, r := range rs {
		if all || (defaults && r.DefaultChecked) {
			add(r.ID)
		}
	}
	return out
}

// highRisk lists the selected ids whose rule is high risk.
func highRisk(rs []rules.Rule, selected []string) []string {
	risk := make(map[string]rules.Risk, len(rs))
	for _, r := range rs {
		risk[r.ID] = r.Risk
	}
	var out []string
	for _, id := range selected {
		if risk[id] == rules.RiskHigh {
			out = append(out, id)
		}
	}
	return out
}
