package tracker

import (
	"slices"

	"waterpolo-tracker/lib/leverade"
)

// TeamRef identifies one of the club's own teams inside a tournament.
type TeamRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// MatchRecord is a match annotated with the round and group it was
// played in, since matches from every group of a tournament are
// flattened into one chronological list.
type MatchRecord struct {
	leverade.Match
	RoundName  string `json:"round_name"`
	RoundOrder int    `json:"round_order"`
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name"`
}

type GroupData struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Standings  []leverade.StandingRow `json:"standings"`
	OurTeamIDs []string               `json:"our_team_ids"`
}

// CategoryData is everything collected for one tournament: the club
// calls each tournament it plays in a "category" (INFANTIL, CADET...).
type CategoryData struct {
	TournamentID   string                            `json:"tournament_id"`
	TournamentName string                            `json:"tournament_name"`
	OurTeams       []TeamRef                         `json:"our_teams"`
	OurTeamIDs     []string                          `json:"our_team_ids"`
	Groups         []GroupData                       `json:"groups"`
	Matches        []MatchRecord                     `json:"matches"`
	TeamNames      map[string]string                 `json:"team_names"`
	Rosters        map[string][]leverade.RosterEntry `json:"rosters"`
}

func (c CategoryData) HasOurTeam(teamID string) bool {
	return slices.Contains(c.OurTeamIDs, teamID)
}

const (
	SeasonCurrent  = "current"
	SeasonFinished = "finished"
)

// SeasonData groups the collected categories of one season together
// with the labels derived from it.
type SeasonData struct {
	ID         string
	Label      string
	Status     string
	Categories []CategoryData
	// birth-year labels per category name, keyed BENJAMI..MASTER
	AgeCategories map[string]AgeCategory
	RefreshedAt   string
	// reference date for computing player ages in the rendered site:
	// today for the current season, end of the season otherwise
	AgeRefDate string
	StartYear  int
}
