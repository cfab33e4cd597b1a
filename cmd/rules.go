package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var (
	rulesListAll  bool
	rulesListJSON bool
	rulesOutFile  string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the rule catalog",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules and whether they can run with current privileges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		list := st.ListRules
		if rulesListAll {
			list = st.AllRules
		}
		rs, err := list(ctx)
		if err != nil {
			return err
		}
		views := rules.WithPrivilege(rs, core.IsElevated())
		if rulesListJSON {
			return writeJSON(cmd.OutOrStdout(), views)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RulesTable(views))
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		rs, err := st.AllRules(ctx)
		if err != nil {
			return err
		}
		if rulesOutFile == "" || rulesOutFile == "-" {
			return rules.Encode(cmd.OutOrStdout(), rs)
		}
		f, err := os.Create(rulesOutFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", rulesOutFile, err)
		}
		if err := rules.Encode(f, rs); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add or replace rules from a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()

		rs, err := rules.Decode(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		for _, r := range rs {
			if r.Path != "" && config.IsProtected(r.Path) {
				return fmt.Errorf("%w: %s targets protected location %s", rules.ErrInvalidRule, r.ID, r.Path)
			}
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.UpsertRules(ctx, rs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rules.\n", len(rs))
		return nil
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <rule-id...>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			for _, id := range args {
				if err := st.SetEnabled(ctx, id, enabled); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func init() {
	rulesListCmd.Flags().BoolVar(&rulesListAll, "all", false, "Include disabled rules")
	rulesListCmd.Flags().BoolVar(&rulesListJSON, "json", false, "Output as JSON")
	rulesExportCmd.Flags().StringVarP(&rulesOutFile, "output", "o", "", "Write to file instead of stdout")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(setEnabledCmd("enable", "Enable rules", true))
	rulesCmd.AddCommand(setEnabledCmd("disable", "Disable rules", false))
}
