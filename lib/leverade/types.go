package leverade

// flat records materialized from the JSON:API resource graph

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

type Tournament struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Order    int    `json:"order"`
	SeasonID string `json:"season_id"`
	Status   string `json:"status"`
}

type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ClubID string `json:"club_id"`
	Avatar string `json:"avatar"`
}

type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
	Type  string `json:"type"`
}

type Round struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Result struct {
	TeamID  string `json:"team_id"`
	MatchID string `json:"match_id"`
	Value   int    `json:"value"`
	Score   bool   `json:"score"`
}

type Match struct {
	ID string `json:"id"`
	// raw wire format, see timezone.MatchTimeLayout. empty when unscheduled
	Date      string   `json:"date"`
	Finished  bool     `json:"finished"`
	Canceled  bool     `json:"canceled"`
	Postponed bool     `json:"postponed"`
	Rest      bool     `json:"rest"`
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
	Venue     string   `json:"venue"`
	Results   []Result `json:"results"`
}

// Score returns the home and away goal counts, nil when a side has
// no recorded result.
func (m Match) Score() (home *int, away *int) {
	for _, r := range m.Results {
		r := r
		if r.TeamID == m.HomeTeam {
			home = &r.Value
		} else if r.TeamID == m.AwayTeam {
			away = &r.Value
		}
	}
	return home, away
}

type StandingRow struct {
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	Points       int    `json:"points"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
}

type RosterEntry struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthdate string `json:"birthdate"`
	Role      string `json:"role"`
}
