package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/clean"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan [rule-id...]",
	Short: "Measure what each rule would free",
	Long: `Measure every enabled rule, or only the given rule ids, without
modifying anything. Shows a live view on a terminal.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output results as JSON")
}

// scanOutput is the JSON shape of a scan.
type scanOutput struct {
	rules.ScanResult
	Summary rules.Summary `json:"summary"`
}

func runScan(cmd *cobra.Command, args []string) error {
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
	if len(args) > 0 {
		rs = filterRules(rs, args)
	}

	var res rules.ScanResult
	if scanJSON || !isTerminal(os.Stdout) {
		res = newEngine(nil).Scan(ctx, rs)
	} else {
		events := make(chan clean.Event, 16)
		eng := newEngine(events)
		res, err = ui.RunScan(ctx, events, func(ctx context.Context) rules.ScanResult {
			defer close(events)
			return eng.Scan(ctx, rs)
		})
		if err != nil {
			return err
		}
	}

	sum := clean.Summarize(res.Reports())
	out := cmd.OutOrStdout()
	if scanJSON {
		return writeJSON(out, scanOutput{ScanResult: res, Summary: sum})
	}
	printResults(ctx, out, st, ui.ScanTable(res), sum)
	return nil
}

// filterRules keeps the rules named in ids, in catalog order.
func filterRules(rs []rules.Rule, ids []string) []rules.Rule {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []rules.Rule
	for _, r := range rs {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
