package commands

import (
	"os"

	"waterpolo-tracker/lib/serviceutil"
	"waterpolo-tracker/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seasonsCmd)
}

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "Lists the seasons and tournaments known to the competition manager.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		client := newClient(cfg)

		seasons, err := tracker.DiscoverSeasons(cmd.Context(), client, cfg.ManagerId)
		if err != nil {
			serviceutil.Fatal("failed to discover seasons", err)
		}
		tracker.MergeCurrentSeasons(seasons)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Season", "Status", "Tournament", "Gender", "Order"})
		for sid, info := range seasons {
			status := "finished"
			if info.HasInProgress {
				status = "current"
			}
			for _, tournament := range info.Tournaments {
				t.AppendRow(table.Row{sid, status, tournament.Name, tournament.Gender, tournament.Order})
			}
			t.AppendSeparator()
		}
		t.Render()
	},
}
