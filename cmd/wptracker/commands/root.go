package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"waterpolo-tracker/lib/configutil"
	"waterpolo-tracker/lib/leverade"
	"waterpolo-tracker/lib/telemetry"
	"waterpolo-tracker/services/tracker"
	"waterpolo-tracker/services/tracker/rosterstore"
	"waterpolo-tracker/services/tracker/seasoncache"

	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "wptracker",
	Short: "wptracker builds a static water polo results site from the Leverade API.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().StringP("config", "c", "config.json5", "Path to the configuration file.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (tracker.Config, error) {
	cfg, err := configutil.ReadConfig[tracker.Config](*configPath)
	if err != nil {
		return tracker.Config{}, fmt.Errorf("read config %s: %w", *configPath, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.RosterDb == "" {
		cfg.RosterDb = "data/rosters.db"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "_site"
	}
	return cfg, nil
}

func newClient(cfg tracker.Config) *leverade.Client {
	delay := leverade.DefaultRequestDelay
	if cfg.RequestDelayMs > 0 {
		delay = time.Duration(cfg.RequestDelayMs) * time.Millisecond
	}
	return leverade.NewClient(leverade.ClientOptions{
		BaseUrl:      cfg.ApiBaseUrl,
		RequestDelay: delay,
	})
}

// newService wires the full pipeline from the config file. The
// returned closer releases the roster database.
func newService() (*tracker.Service, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	rosters, err := rosterstore.Open(cfg.RosterDb)
	if err != nil {
		return nil, nil, fmt.Errorf("open roster store %s: %w", cfg.RosterDb, err)
	}
	cache := seasoncache.New[tracker.CategoryData](cfg.DataDir)
	return tracker.NewService(cfg, newClient(cfg), cache, rosters), rosters.Close, nil
}
