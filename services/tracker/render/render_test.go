package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"waterpolo-tracker/lib/leverade"
	"waterpolo-tracker/services/tracker"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func fixtureSeason() tracker.SeasonData {
	return tracker.SeasonData{
		ID:     "7",
		Label:  "2025-26",
		Status: tracker.SeasonCurrent,
		Categories: []tracker.CategoryData{
			{
				TournamentID:   "100",
				TournamentName: "LLIGA CATALANA INFANTIL MASCULINA",
				OurTeams:       []tracker.TeamRef{{ID: "500", Name: "CN SANT FELIU A"}},
				OurTeamIDs:     []string{"500"},
				Groups: []tracker.GroupData{{
					ID:   "700",
					Name: "Grup A",
					Standings: []leverade.StandingRow{
						{TeamID: "500", Name: "CN SANT FELIU A", Position: 1, Points: 3, Played: 1, Won: 1, GoalsFor: 12, GoalsAgainst: 7, GoalDiff: 5},
						{TeamID: "501", Name: "CN RIVAL", Position: 2, Played: 1, Lost: 1, GoalsFor: 7, GoalsAgainst: 12, GoalDiff: -5},
					},
					OurTeamIDs: []string{"500"},
				}},
				Matches: []tracker.MatchRecord{
					{
						Match: leverade.Match{
							ID: "m1", Date: "2025-10-04 12:30:00", Finished: true,
							HomeTeam: "500", AwayTeam: "501", Venue: "Piscina Municipal",
							Results: []leverade.Result{
								{TeamID: "500", MatchID: "m1", Value: 12, Score: true},
								{TeamID: "501", MatchID: "m1", Value: 7, Score: true},
							},
						},
						RoundName: "Jornada 1", RoundOrder: 1, GroupID: "700", GroupName: "Grup A",
					},
					{
						Match: leverade.Match{
							ID: "m2", Date: "2026-02-01 11:00:00",
							HomeTeam: "501", AwayTeam: "500",
						},
						RoundName: "Jornada 2", RoundOrder: 2, GroupID: "700", GroupName: "Grup A",
					},
				},
				TeamNames: map[string]string{"500": "CN SANT FELIU A", "501": "CN RIVAL"},
				Rosters: map[string][]leverade.RosterEntry{
					"500": {{FirstName: "MARC", LastName: "VILA", Birthdate: "2011-04-02", Role: "player"}},
					"501": {},
				},
			},
		},
		AgeCategories: tracker.BuildCategoryAges(2025),
		RefreshedAt:   "04/10/2025 18:00",
		AgeRefDate:    "2025-10-04",
		StartYear:     2025,
	}
}

func renderFixture(t *testing.T, seasons ...tracker.SeasonData) []byte {
	html, err := Render(seasons, Options{Now: time.Date(2025, 10, 4, 18, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	return html
}

func TestRenderStructure(t *testing.T) {
	html := renderFixture(t, fixtureSeason())

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	require.NoError(t, err)

	require.Equal(t, "Waterpolo Tracker", doc.Find("title").Text())
	require.Equal(t, "1 categories", doc.Find(".subtitle").Text())

	// one season, no selector
	require.Zero(t, doc.Find("#season-select").Length())

	card := doc.Find(".season-cats[data-season='7'] .cat-card")
	require.Equal(t, 1, card.Length())
	require.Equal(t, "INFANTIL Masc.", card.Find(".cat-card-name").Text())
	require.Equal(t, "13-14 anys (2011-12)", card.Find(".cat-card-age").Text())
	require.Equal(t, "1 equip", card.Find(".cat-card-teams").Text())

	teamCard := doc.Find("#teams-s7-lliga-catalana-infantil-masculina .cat-card")
	require.Equal(t, 1, teamCard.Length())
	require.Equal(t, "CN SANT FELIU A", teamCard.Find(".cat-card-name").Text())
	require.Equal(t, "1V", teamCard.Find(".cat-card-record .w").Text())
	require.Equal(t, "0E", teamCard.Find(".cat-card-record .d").Text())
	require.Equal(t, "0D", teamCard.Find(".cat-card-record .l").Text())
	require.Contains(t, teamCard.Find(".cat-card-next").Text(), "01/02 11:00")
	require.Contains(t, teamCard.Find(".cat-card-next").Text(), "CN RIVAL vs CN SANT FELIU A")

	detail := doc.Find("#s7-lliga-catalana-infantil-masculina-cn-sant-feliu-a")
	require.Equal(t, 1, detail.Length())
	require.Equal(t, "LLIGA CATALANA INFANTIL MASCULINA", detail.Find("h2").Text())

	options := detail.Find(".team-selector option")
	require.Equal(t, 2, options.Length())
	selected := detail.Find(".team-selector option[selected]")
	require.Equal(t, "500", selected.AttrOr("value", ""))
	require.Equal(t, "CN SANT FELIU A", selected.Text())
}

var wpRe = regexp.MustCompile(`window\.WP=(.*?);window\.ROST=(.*?);window\.CLUPIK=`)

// the page embeds the dataset as JSON, what was collected must land
// there exactly: every match and standings row, nothing else
func TestRenderEmbeddedData(t *testing.T) {
	season := fixtureSeason()
	html := renderFixture(t, season)

	m := wpRe.FindSubmatch(html)
	require.NotNil(t, m, "embedded WP JSON not found")

	var wp map[string]wireEntry
	require.NoError(t, json.Unmarshal(m[1], &wp))
	require.Len(t, wp, 1)

	entry, ok := wp["s7-lliga-catalana-infantil-masculina-cn-sant-feliu-a"]
	require.True(t, ok)
	require.Equal(t, "100", entry.Tid)
	require.Equal(t, "500", entry.Dt)

	wantMatches := []wireMatch{
		{D: "2025-10-04 12:30:00", F: true, H: "500", A: "501", Hs: intp(12), As: intp(7), Rn: "Jornada 1", Gn: "Grup A", V: "Piscina Municipal"},
		{D: "2026-02-01 11:00:00", F: false, H: "501", A: "500", Rn: "Jornada 2", Gn: "Grup A"},
	}
	if diff := cmp.Diff(wantMatches, entry.Matches); diff != "" {
		t.Fatalf("embedded matches mismatch (-want +got):\n%s", diff)
	}

	wantGroups := []wireGroup{{
		ID: "700", N: "Grup A",
		S: []wireStanding{
			{ID: "500", N: "CN SANT FELIU A", Pos: 1, Pts: 3, Pj: 1, Pg: 1, Gf: 12, Gc: 7, Dg: 5},
			{ID: "501", N: "CN RIVAL", Pos: 2, Pj: 1, Pp: 1, Gf: 7, Gc: 12, Dg: -5},
		},
	}}
	if diff := cmp.Diff(wantGroups, entry.Groups); diff != "" {
		t.Fatalf("embedded standings mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]string{"500": "CN SANT FELIU A", "501": "CN RIVAL"}, entry.Teams)

	var rost map[string][]wireRosterEntry
	require.NoError(t, json.Unmarshal(m[2], &rost))
	require.Len(t, rost, 1, "teams with empty rosters stay out of the page")
	require.Equal(t, []wireRosterEntry{{Fn: "MARC", Ln: "VILA", Bd: "2011-04-02", Ro: "player"}}, rost["500"])
}

func TestRenderMultipleSeasons(t *testing.T) {
	current := fixtureSeason()
	finished := fixtureSeason()
	finished.ID = "6"
	finished.Label = "2023-24"
	finished.Status = tracker.SeasonFinished

	html := renderFixture(t, current, finished)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	require.NoError(t, err)

	options := doc.Find("#season-select option")
	require.Equal(t, 2, options.Length())
	require.Contains(t, options.First().Text(), "2025-26 (En curs)")

	// current season is the visible one
	require.Equal(t, 1, doc.Find(".season-cats.active[data-season='7']").Length())
	require.Zero(t, doc.Find(".season-cats.active[data-season='6']").Length())
}

func TestWriteSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, WriteSite(dir, []tracker.SeasonData{fixtureSeason()}, Options{}))

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "Waterpolo Tracker")

	robots, err := os.ReadFile(filepath.Join(dir, "robots.txt"))
	require.NoError(t, err)
	require.Equal(t, "User-agent: *\nDisallow: /\n", string(robots))
}
