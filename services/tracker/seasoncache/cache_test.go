package seasoncache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTournament struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Matches []string `json:"matches"`
}

func TestSeasonRoundtrip(t *testing.T) {
	cache := New[fakeTournament](t.TempDir())

	_, ok, err := cache.LoadSeason("7")
	require.NoError(t, err)
	require.False(t, ok)

	payload := Payload[fakeTournament]{
		SeasonID:    "7",
		SeasonLabel: "2024-25",
		Tournaments: []fakeTournament{
			{ID: "100", Name: "LLIGA INFANTIL", Matches: []string{"m1", "m2"}},
		},
		RefreshedAt: "01/06/2025 10:00",
	}
	require.NoError(t, cache.SaveSeason(payload))

	loaded, ok, err := cache.LoadSeason("7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, loaded)
}

func TestLoadSeasonCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.json"), []byte("{nope"), 0644))

	cache := New[fakeTournament](dir)
	_, ok, err := cache.LoadSeason("7")
	require.Error(t, err)
	require.False(t, ok)
}

func TestTournamentRoundtripAndCleanup(t *testing.T) {
	dir := t.TempDir()
	cache := New[fakeTournament](dir)

	_, ok, err := cache.LoadTournament("100")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SaveTournament("100", fakeTournament{ID: "100", Name: "LLIGA"}))

	loaded, ok, err := cache.LoadTournament("100")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "LLIGA", loaded.Name)

	// season files survive the cleanup, tournament files do not
	require.NoError(t, cache.SaveSeason(Payload[fakeTournament]{SeasonID: "7", SeasonLabel: "2024-25"}))
	require.NoError(t, cache.CleanupTournaments())

	_, ok, err = cache.LoadTournament("100")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = cache.LoadSeason("7")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCleanupMissingDir(t *testing.T) {
	cache := New[fakeTournament](filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, cache.CleanupTournaments())
}
