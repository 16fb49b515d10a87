// Command dev scaffolds a local working environment: an example
// config.json5, the data directory and an empty roster database.
// Existing files are left alone unless -recreate is passed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"waterpolo-tracker/services/tracker/rosterstore"
)

const exampleConfig = `{
  // Leverade ids of the club and the federation's competition manager
  club_id: "",
  manager_id: "",

  api_base_url: "https://api.leverade.com",
  clupik_base_url: "https://clupik.pro",
  // minimum ms between API requests
  request_delay_ms: 300,

  data_dir: "data",
  roster_db: "data/rosters.db",
  output_dir: "_site",

  staticrypt: {
    enabled: false,
    password_env: "STATICRYPT_PASSWORD",
  },
}
`

func writeIfMissing(path string, contents string, recreate bool) error {
	_, err := os.Stat(path)
	if err == nil && !recreate {
		slog.Info("already exists, skipping", "path", path)
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	err = os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		return err
	}
	slog.Info("wrote", "path", path)
	return nil
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	err = writeIfMissing("config.json5", exampleConfig, recreate)
	if err != nil {
		return err
	}

	err = os.MkdirAll("data", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	store, err := rosterstore.Open("data/rosters.db")
	if err != nil {
		return err
	}
	return store.Close()
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
