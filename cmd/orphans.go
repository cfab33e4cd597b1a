package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/uninstall"
)

var orphansJSON bool

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List orphaned uninstall entries and leftover folders",
	Long: `Read-only view of what the registry and app_residue rules would
target. Nothing is deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := uninstall.NewRegistryStore()
		orphans, err := uninstall.FindOrphans(store)
		if err != nil && !errors.Is(err, uninstall.ErrUnsupported) {
			return err
		}
		det := uninstall.ResidueDetector{
			Store: store,
			Roots: uninstall.DefaultResidueRoots(),
			Now:   time.Now,
		}
		residue, err := det.Candidates(cfg.ResidueCutoff())
		if err != nil && !errors.Is(err, uninstall.ErrUnsupported) {
			return err
		}
		supported := store.Supported()

		out := cmd.OutOrStdout()
		if orphansJSON {
			return writeJSON(out, struct {
				Supported bool                     `json:"supported"`
				Orphans   []uninstall.Registration `json:"orphans"`
				Residue   []string                 `json:"residue"`
			}{supported, orphans, residue})
		}
		if !supported {
			fmt.Fprintln(out, "Uninstall registrations are only available on Windows.")
			return nil
		}

		fmt.Fprintf(out, "Orphaned uninstall entries (%d)\n", len(orphans))
		for _, o := range orphans {
			name := o.DisplayName
			if name == "" {
				name = "(no name)"
			}
			fmt.Fprintf(out, "  %-40s %s\n", name, o.ID())
		}
		fmt.Fprintf(out, "\n%s\n", uninstall.OrphanScanAdvisory)

		fmt.Fprintf(out, "\nLeftover folders older than %d days (%d)\n", cfg.ResidueCutoffDays, len(residue))
		for _, p := range residue {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintf(out, "\n%s\n", uninstall.ResidueScanAdvisory)
		return nil
	},
}

func init() {
	orphansCmd.Flags().BoolVar(&orphansJSON, "json", false, "Output as JSON")
}
