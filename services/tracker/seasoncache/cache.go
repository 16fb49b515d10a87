package seasoncache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// one JSON file per finished season plus a t_<id>.json file per
// finished tournament of the season still in progress. a season
// file, once written, is never touched again by the program:
// presence of the file is the cache policy.

type Payload[T any] struct {
	SeasonID    string `json:"season_id"`
	SeasonLabel string `json:"season_label"`
	Tournaments []T    `json:"tournaments"`
	RefreshedAt string `json:"refreshed_at"`
}

type Cache[T any] struct {
	dir string
}

func New[T any](dir string) Cache[T] {
	return Cache[T]{dir: dir}
}

func (c Cache[T]) seasonPath(seasonID string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s.json", seasonID))
}

func (c Cache[T]) tournamentPath(tournamentID string) string {
	return filepath.Join(c.dir, fmt.Sprintf("t_%s.json", tournamentID))
}

// LoadSeason returns the cached payload for a season, ok is false
// when no cache file exists.
func (c Cache[T]) LoadSeason(seasonID string) (Payload[T], bool, error) {
	contents, err := os.ReadFile(c.seasonPath(seasonID))
	if os.IsNotExist(err) {
		return Payload[T]{}, false, nil
	}
	if err != nil {
		return Payload[T]{}, false, err
	}

	var payload Payload[T]
	err = json.Unmarshal(contents, &payload)
	if err != nil {
		return Payload[T]{}, false, err
	}
	slog.Info("loaded season from cache", "season", payload.SeasonLabel, "path", c.seasonPath(seasonID))
	return payload, true, nil
}

// SeasonMtime reports the cache file's modification time formatted as
// a refreshed-at label, for old cache files written without one.
func (c Cache[T]) SeasonMtime(seasonID string) string {
	info, err := os.Stat(c.seasonPath(seasonID))
	if err != nil {
		return ""
	}
	return info.ModTime().Format("02/01/2006 15:04")
}

func (c Cache[T]) SaveSeason(payload Payload[T]) error {
	err := os.MkdirAll(c.dir, 0755)
	if err != nil {
		return err
	}
	contents, err := json.MarshalIndent(payload, "", " ")
	if err != nil {
		return err
	}
	path := c.seasonPath(payload.SeasonID)
	err = os.WriteFile(path, contents, 0644)
	if err != nil {
		return err
	}
	slog.Info("cached season", "season", payload.SeasonLabel, "path", path)
	return nil
}

// LoadTournament returns a cached finished tournament, ok is false
// when no cache file exists.
func (c Cache[T]) LoadTournament(tournamentID string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(c.tournamentPath(tournamentID))
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

func (c Cache[T]) SaveTournament(tournamentID string, data T) error {
	err := os.MkdirAll(c.dir, 0755)
	if err != nil {
		return err
	}
	contents, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	path := c.tournamentPath(tournamentID)
	err = os.WriteFile(path, contents, 0644)
	if err != nil {
		return err
	}
	slog.Info("cached tournament", "tournament", tournamentID, "path", path)
	return nil
}

// CleanupTournaments removes per-tournament cache files, called once
// the whole season has been cached.
func (c Cache[T]) CleanupTournaments() error {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "t_") && strings.HasSuffix(name, ".json") {
			err := os.Remove(filepath.Join(c.dir, name))
			if err != nil {
				return err
			}
			slog.Info("cleaned up tournament cache", "file", name)
		}
	}
	return nil
}
