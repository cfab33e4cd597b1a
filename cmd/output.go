package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/store"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
	"github.com/lakshaymaurya-felt/reclaim/internal/volume"
)

// settingShowAnalysis toggles the category and drive breakdown under
// scan and clean tables.
const settingShowAnalysis = "show_analysis"

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm asks a yes/no question; anything but y/yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// showAnalysis reads the show_analysis setting; it defaults to on.
func showAnalysis(ctx context.Context, st *store.Store) bool {
	v, ok, err := st.GetSetting(ctx, settingShowAnalysis)
	if err != nil || !ok {
		return true
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return on
}

// driveUsage looks up free space for every drive bucket. Drives that cannot
// be read are left out.
func driveUsage(ctx context.Context, sum rules.Summary) map[string]volume.Volume {
	out := make(map[string]volume.Volume)
	for _, b := range sum.ByDrive {
		if b.Key == "" {
			continue
		}
		if v, err := volume.ForDrive(ctx, b.Key); err == nil {
			out[b.Key] = v
		}
	}
	return out
}

// printResults writes a result table and, when enabled, the summary.
func printResults(ctx context.Context, w io.Writer, st *store.Store, table string, sum rules.Summary) {
	fmt.Fprintln(w, table)
	if showAnalysis(ctx, st) {
		fmt.Fprintln(w, ui.SummaryView(sum, driveUsage(ctx, sum)))
	}
}
