package commands

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"waterpolo-tracker/lib/serviceutil"
	"waterpolo-tracker/services/tracker"
	"waterpolo-tracker/services/tracker/render"

	"github.com/spf13/cobra"
)

var refreshRosters *bool

func init() {
	refreshRosters = buildCmd.Flags().Bool("refresh-rosters", false, "Re-fetch every team roster instead of using stored copies.")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build [--refresh-rosters]",
	Short: "Fetches all season data and generates the static site.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, closer, err := newService()
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer closer()

		seasons, err := svc.BuildSeasons(cmd.Context(), tracker.BuildOptions{
			RefreshRosters: *refreshRosters,
		})
		if err != nil {
			serviceutil.Fatal("failed to build season data", err)
		}

		cfg := svc.Config()
		err = render.WriteSite(cfg.OutputDir, seasons, render.Options{
			ClupikBaseUrl: cfg.ClupikBaseUrl,
		})
		if err != nil {
			serviceutil.Fatal("failed to write site", err)
		}
		slog.Info("site generated", "dir", cfg.OutputDir, "seasons", len(seasons))

		if cfg.Staticrypt.Enabled {
			encrypt(cfg)
		}
	},
}

func encrypt(cfg tracker.Config) {
	passwordEnv := cfg.Staticrypt.PasswordEnv
	if passwordEnv == "" {
		passwordEnv = "STATICRYPT_PASSWORD"
	}
	password := os.Getenv(passwordEnv)
	if password == "" {
		slog.Warn("no site password set, site NOT encrypted", "env", passwordEnv)
		return
	}

	err := render.EncryptSite(cfg.OutputDir, password)
	if errors.Is(err, exec.ErrNotFound) {
		slog.Warn("staticrypt not installed, site NOT encrypted")
		return
	}
	if err != nil {
		serviceutil.Fatal("failed to encrypt site", err)
	}
	slog.Info("site encrypted")
}
