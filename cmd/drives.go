package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/trash"
	"github.com/lakshaymaurya-felt/reclaim/internal/volume"
)

var drivesJSON bool

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Show volume usage and trash contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vols, err := volume.List(cmd.Context())
		if err != nil {
			return err
		}
		trashBytes, trashItems, err := trash.New().Usage()
		if err != nil {
			log.Debug().Err(err).Msg("Trash usage unavailable")
		}

		out := cmd.OutOrStdout()
		if drivesJSON {
			return writeJSON(out, struct {
				Volumes    []volume.Volume `json:"volumes"`
				TrashBytes int64           `json:"trash_bytes"`
				TrashItems int64           `json:"trash_items"`
			}{vols, trashBytes, trashItems})
		}

		fmt.Fprintf(out, "  %-20s %-8s %10s %10s %6s  %s\n", "MOUNT", "FS", "SIZE", "FREE", "USED", "LABEL")
		for _, v := range vols {
			fmt.Fprintf(out, "  %-20s %-8s %10s %10s %5.1f%%  %s\n",
				v.Mount, v.FSType,
				core.FormatSize(int64(v.Total)), core.FormatSize(int64(v.Free)),
				v.UsedPercent, v.Label)
		}
		if err == nil {
			fmt.Fprintf(out, "\n  Trash: %s in %d items\n", core.FormatSize(trashBytes), trashItems)
		}
		return nil
	},
}

func init() {
	drivesCmd.Flags().BoolVar(&drivesJSON, "json", false, "Output as JSON")
}
