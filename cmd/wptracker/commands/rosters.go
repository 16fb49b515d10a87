package commands

import (
	"os"

	"waterpolo-tracker/lib/serviceutil"
	"waterpolo-tracker/services/tracker/rosterstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rostersCmd)
}

var rostersCmd = &cobra.Command{
	Use:   "rosters <team-id>...",
	Short: "Fetches and stores the roster of one or more teams, then prints them.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		client := newClient(cfg)

		store, err := rosterstore.Open(cfg.RosterDb)
		if err != nil {
			serviceutil.Fatal("failed to open roster store", err)
		}
		defer store.Close()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Team", "Name", "Birthdate", "Role"})
		for _, teamID := range args {
			roster, err := client.TeamRoster(cmd.Context(), teamID)
			if err != nil {
				serviceutil.Fatal("failed to fetch roster", err)
			}
			err = store.Put(cmd.Context(), teamID, roster)
			if err != nil {
				serviceutil.Fatal("failed to store roster", err)
			}
			for _, p := range roster {
				t.AppendRow(table.Row{teamID, p.LastName + ", " + p.FirstName, p.Birthdate, p.Role})
			}
			t.AppendSeparator()
		}
		t.Render()
	},
}
