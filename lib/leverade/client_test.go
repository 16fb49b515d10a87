package leverade

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"waterpolo-tracker/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	mux := http.NewServeMux()
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.Write([]byte(body))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestManagerTournaments(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/leverade")
	defer cleanup()

	server := newTestServer(t, map[string]string{
		"/managers/12": `{
			"data": {"id": "12", "type": "manager", "attributes": {"name": "FCN"}},
			"included": [
				{
					"id": "100", "type": "tournament",
					"attributes": {"name": "LLIGA CATALANA INFANTIL MASCULINA", "gender": "male", "order": 3, "status": "in_progress"},
					"relationships": {"season": {"data": {"id": "7", "type": "season"}}}
				},
				{
					"id": "101", "type": "tournament",
					"attributes": {"name": "LLIGA CATALANA CADET FEMENINA", "gender": "female", "order": 4, "status": "finished"},
					"relationships": {"season": {"data": {"id": "6", "type": "season"}}}
				},
				{
					"id": "102", "type": "tournament",
					"attributes": {"name": "PENDENT", "status": "pending"},
					"relationships": {}
				}
			]
		}`,
	})

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	tournaments, err := client.ManagerTournaments(context.Background(), "12")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, tournaments, 2)
	require.Equal(t, Tournament{
		ID:       "100",
		Name:     "LLIGA CATALANA INFANTIL MASCULINA",
		Gender:   "male",
		Order:    3,
		SeasonID: "7",
		Status:   StatusInProgress,
	}, tournaments[0])
	require.Equal(t, "6", tournaments[1].SeasonID)
	require.Equal(t, StatusFinished, tournaments[1].Status)
}

func TestTournamentTeams(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/tournaments/100": `{
			"data": {"id": "100", "type": "tournament", "attributes": {"name": "LLIGA"}},
			"included": [
				{
					"id": "500", "type": "team",
					"attributes": {"name": "CN SANT FELIU A"},
					"relationships": {"club": {"data": {"id": "310", "type": "club"}}},
					"meta": {"avatar": {"large": "https://cdn.example/500.png"}}
				},
				{
					"id": "501", "type": "team",
					"attributes": {"name": "CN RIVAL"},
					"relationships": {"club": {"data": {"id": "999", "type": "club"}}}
				}
			]
		}`,
	})

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	teams, err := client.TournamentTeams(context.Background(), "100")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, teams, 2)
	require.Equal(t, "310", teams[0].ClubID)
	require.Equal(t, "https://cdn.example/500.png", teams[0].Avatar)
	require.Equal(t, "999", teams[1].ClubID)
	require.Equal(t, "", teams[1].Avatar)
}

func TestRoundMatches(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/rounds/900": `{
			"data": {"id": "900", "type": "round", "attributes": {"name": "Jornada 1"}},
			"included": [
				{
					"id": "r1", "type": "result",
					"attributes": {"value": 12, "score": true},
					"relationships": {
						"team": {"data": {"id": 500, "type": "team"}},
						"match": {"data": {"id": "m1", "type": "match"}}
					}
				},
				{
					"id": "r2", "type": "result",
					"attributes": {"value": 7, "score": true},
					"relationships": {
						"team": {"data": {"id": 501, "type": "team"}},
						"match": {"data": {"id": "m1", "type": "match"}}
					}
				},
				{
					"id": "f1", "type": "facility",
					"attributes": {"name": "Piscina Municipal"}
				},
				{
					"id": "m1", "type": "match",
					"attributes": {"date": "2025-10-04 12:30:00", "finished": true, "canceled": false, "postponed": false},
					"meta": {"home_team": 500, "away_team": 501},
					"relationships": {
						"facility": {"data": {"id": "f1", "type": "facility"}},
						"results": {"data": [{"id": "r1", "type": "result"}, {"id": "r2", "type": "result"}]}
					}
				},
				{
					"id": "m2", "type": "match",
					"attributes": {"date": "", "finished": false},
					"meta": {"home_team": 501, "away_team": null},
					"relationships": {"results": {"data": []}}
				}
			]
		}`,
	})

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	matches, err := client.RoundMatches(context.Background(), "900")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, matches, 2)

	m := matches[0]
	require.Equal(t, "m1", m.ID)
	require.Equal(t, "2025-10-04 12:30:00", m.Date)
	require.True(t, m.Finished)
	require.Equal(t, "500", m.HomeTeam)
	require.Equal(t, "501", m.AwayTeam)
	require.Equal(t, "Piscina Municipal", m.Venue)
	require.Len(t, m.Results, 2)

	home, away := m.Score()
	require.NotNil(t, home)
	require.NotNil(t, away)
	require.Equal(t, 12, *home)
	require.Equal(t, 7, *away)

	require.Equal(t, "", matches[1].AwayTeam)
	require.Empty(t, matches[1].Results)
	home, away = matches[1].Score()
	require.Nil(t, home)
	require.Nil(t, away)
}

func TestGroupStandings(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/groups/700/standings": `{
			"data": null,
			"meta": {"standingsrows": [
				{
					"id": 501, "name": "CN RIVAL", "position": 2,
					"standingsstats": [
						{"type": "score", "value": 9},
						{"type": "played_matches", "value": 5},
						{"type": "won_matches", "value": 3},
						{"type": "drawn_matches", "value": 0},
						{"type": "lost_matches", "value": 2},
						{"type": "value", "value": 40},
						{"type": "value_against", "value": 35},
						{"type": "value_difference", "value": 5}
					]
				},
				{
					"id": 500, "name": "CN SANT FELIU A", "position": 1,
					"standingsstats": [
						{"type": "score", "value": 15},
						{"type": "played_matches", "value": 5},
						{"type": "won_matches", "value": 5},
						{"type": "drawn_matches", "value": 0},
						{"type": "lost_matches", "value": 0},
						{"type": "value", "value": 62},
						{"type": "value_against", "value": 21},
						{"type": "value_difference", "value": 41}
					]
				}
			]}
		}`,
	})

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	standings, err := client.GroupStandings(context.Background(), "700")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, standings, 2)
	require.Equal(t, "500", standings[0].TeamID)
	require.Equal(t, 1, standings[0].Position)
	require.Equal(t, 15, standings[0].Points)
	require.Equal(t, 41, standings[0].GoalDiff)
	require.Equal(t, "501", standings[1].TeamID)
}

func TestTeamRoster(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/teams/500": `{
			"data": {"id": "500", "type": "team", "attributes": {"name": "CN SANT FELIU A"}},
			"included": [
				{"id": "pr1", "type": "profile", "attributes": {"first_name": "MARC", "last_name": "VILA", "birthdate": "2011-04-02"}},
				{"id": "pr2", "type": "profile", "attributes": {"first_name": "JOAN", "last_name": "PUIG", "birthdate": "2012-01-15"}},
				{"id": "pr3", "type": "profile", "attributes": {"first_name": "ANNA", "last_name": "ROCA", "birthdate": "1985-06-20"}},
				{
					"id": "l1", "type": "license", "attributes": {"type": "player"},
					"relationships": {"profile": {"data": {"id": "pr1", "type": "profile"}}}
				},
				{
					"id": "l2", "type": "license", "attributes": {"type": "player"},
					"relationships": {"profile": {"data": {"id": "pr2", "type": "profile"}}}
				},
				{
					"id": "l3", "type": "license", "attributes": {"type": "coach"},
					"relationships": {"profile": {"data": {"id": "pr3", "type": "profile"}}}
				},
				{
					"id": "l4", "type": "license", "attributes": {"type": "player"},
					"relationships": {"profile": {"data": null}}
				},
				{"id": "p1", "type": "participant", "relationships": {"license": {"data": {"id": "l1", "type": "license"}}}},
				{"id": "p2", "type": "participant", "relationships": {"license": {"data": {"id": "l2", "type": "license"}}}},
				{"id": "p3", "type": "participant", "relationships": {"license": {"data": {"id": "l3", "type": "license"}}}},
				{"id": "p4", "type": "participant", "relationships": {"license": {"data": {"id": "l4", "type": "license"}}}},
				{"id": "p5", "type": "participant", "relationships": {}}
			]
		}`,
	})

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	roster, err := client.TeamRoster(context.Background(), "500")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, roster, 3)
	// players sorted by last name first, coach last
	require.Equal(t, "PUIG", roster[0].LastName)
	require.Equal(t, "player", roster[0].Role)
	require.Equal(t, "VILA", roster[1].LastName)
	require.Equal(t, "coach", roster[2].Role)
	require.Equal(t, "ROCA", roster[2].LastName)
}

func TestStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	_, err := client.TeamRoster(context.Background(), "500")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestThrottleSpacing(t *testing.T) {
	var times []time.Time
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/500", func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		w.Write([]byte(`{"data": {"id": "500", "type": "team", "attributes": {"name": "X"}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL, RequestDelay: 50 * time.Millisecond})
	for i := 0; i < 3; i++ {
		_, err := client.TeamName(context.Background(), "500")
		if err != nil {
			t.Fatal(err)
		}
	}

	require.Len(t, times, 3)
	require.GreaterOrEqual(t, times[2].Sub(times[0]), 90*time.Millisecond)
}

func TestThrottleRespectsCancel(t *testing.T) {
	client := NewClient(ClientOptions{RequestDelay: time.Minute})
	client.last = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.TeamName(ctx, "500")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
