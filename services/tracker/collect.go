package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"waterpolo-tracker/lib/leverade"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// club team rosters older than this get re-fetched on current-season
// builds even without --refresh-rosters
const rosterMaxAge = 30 * 24 * time.Hour

type collectOptions struct {
	RefreshRosters bool
	CurrentSeason  bool
}

// collectTournament walks one tournament end to end: standings and
// matches for every group, team name resolution for teams that appear
// in matches but not in standings, and rosters.
func (s *Service) collectTournament(ctx context.Context, t ClubTournament, opts collectOptions) (CategoryData, error) {
	ctx, span := tracer.Start(ctx, "collectTournament")
	defer span.End()
	span.SetAttributes(attribute.String("tournament.id", t.ID), attribute.String("tournament.name", t.Name))

	ourTeamIDs := make([]string, 0, len(t.OurTeams))
	for _, team := range t.OurTeams {
		ourTeamIDs = append(ourTeamIDs, team.ID)
	}
	slices.Sort(ourTeamIDs)

	groups, err := s.client.TournamentGroups(ctx, t.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch groups")
		return CategoryData{}, fmt.Errorf("fetch groups of %s: %w", t.Name, err)
	}
	slog.Info("collecting tournament", "tournament", t.Name, "groups", len(groups))

	var collectedGroups []GroupData
	var allMatches []MatchRecord
	teamNames := map[string]string{}

	for _, g := range groups {
		standings, err := s.client.GroupStandings(ctx, g.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch standings")
			return CategoryData{}, fmt.Errorf("fetch standings of group %s: %w", g.Name, err)
		}

		var ourInGroup []string
		for _, row := range standings {
			teamNames[row.TeamID] = row.Name
			if slices.Contains(ourTeamIDs, row.TeamID) {
				ourInGroup = append(ourInGroup, row.TeamID)
			}
		}
		slices.Sort(ourInGroup)

		rounds, err := s.client.GroupRounds(ctx, g.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch rounds")
			return CategoryData{}, fmt.Errorf("fetch rounds of group %s: %w", g.Name, err)
		}

		groupMatches := 0
		for _, round := range rounds {
			matches, err := s.client.RoundMatches(ctx, round.ID)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "fetch matches")
				return CategoryData{}, fmt.Errorf("fetch matches of round %s: %w", round.Name, err)
			}
			for _, m := range matches {
				allMatches = append(allMatches, MatchRecord{
					Match:      m,
					RoundName:  round.Name,
					RoundOrder: round.Order,
					GroupID:    g.ID,
					GroupName:  g.Name,
				})
			}
			groupMatches += len(matches)
		}

		collectedGroups = append(collectedGroups, GroupData{
			ID:         g.ID,
			Name:       g.Name,
			Standings:  standings,
			OurTeamIDs: ourInGroup,
		})
		slog.Info("collected group", "group", g.Name, "matches", groupMatches, "ours", len(ourInGroup) > 0)
	}

	// matches can involve teams from outside the group standings
	// (promotion playoffs and the like), resolve their names too
	missing := map[string]bool{}
	for _, m := range allMatches {
		if m.HomeTeam != "" && teamNames[m.HomeTeam] == "" {
			missing[m.HomeTeam] = true
		}
		if m.AwayTeam != "" && teamNames[m.AwayTeam] == "" {
			missing[m.AwayTeam] = true
		}
	}
	for _, id := range sortedKeys(missing) {
		name, err := s.client.TeamName(ctx, id)
		if err != nil {
			slog.Warn("could not resolve team name", "team", id, "err", err)
			name = fmt.Sprintf("Equip %s", id)
		}
		teamNames[id] = name
	}
	for _, team := range t.OurTeams {
		teamNames[team.ID] = team.Name
	}

	slices.SortStableFunc(allMatches, func(a, b MatchRecord) int {
		da, db := a.Date, b.Date
		// unscheduled matches sort last
		if da == "" {
			da = "9999"
		}
		if db == "" {
			db = "9999"
		}
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	rosters, err := s.collectRosters(ctx, collectedGroups, ourTeamIDs, opts)
	if err != nil {
		return CategoryData{}, err
	}

	return CategoryData{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		OurTeams:       t.OurTeams,
		OurTeamIDs:     ourTeamIDs,
		Groups:         collectedGroups,
		Matches:        allMatches,
		TeamNames:      teamNames,
		Rosters:        rosters,
	}, nil
}

// collectRosters loads rosters from the store and decides which ones
// to fetch. Refresh mode re-fetches every team in the tournament.
// Otherwise only the club's own teams are fetched, and only on
// current-season builds when the stored copy is missing or stale.
// Fetch failures degrade to the stored copy or an empty roster.
func (s *Service) collectRosters(ctx context.Context, groups []GroupData, ourTeamIDs []string, opts collectOptions) (map[string][]leverade.RosterEntry, error) {
	allTeamIDs := map[string]bool{}
	for _, g := range groups {
		for _, row := range g.Standings {
			allTeamIDs[row.TeamID] = true
		}
	}

	rosters := map[string][]leverade.RosterEntry{}

	if opts.RefreshRosters {
		slog.Info("refreshing rosters", "teams", len(allTeamIDs))
		for _, teamID := range sortedKeys(allTeamIDs) {
			roster, err := s.client.TeamRoster(ctx, teamID)
			if err != nil {
				slog.Warn("could not fetch roster", "team", teamID, "err", err)
				rosters[teamID] = []leverade.RosterEntry{}
				continue
			}
			rosters[teamID] = roster
			err = s.rosters.Put(ctx, teamID, roster)
			if err != nil {
				return nil, fmt.Errorf("store roster of team %s: %w", teamID, err)
			}
		}
		return rosters, nil
	}

	for _, teamID := range sortedKeys(allTeamIDs) {
		roster, _, ok, err := s.rosters.Get(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("load roster of team %s: %w", teamID, err)
		}
		if ok {
			rosters[teamID] = roster
		} else {
			// empty until the next refresh run
			rosters[teamID] = []leverade.RosterEntry{}
		}
	}

	if !opts.CurrentSeason {
		return rosters, nil
	}

	// the club's own teams refresh even when they have no standings row
	// yet (season just started, group not seeded)
	for _, teamID := range ourTeamIDs {
		stale, err := s.rosters.Stale(ctx, teamID, rosterMaxAge)
		if err != nil {
			return nil, fmt.Errorf("check roster age of team %s: %w", teamID, err)
		}
		if !stale {
			if _, loaded := rosters[teamID]; !loaded {
				roster, _, ok, err := s.rosters.Get(ctx, teamID)
				if err != nil {
					return nil, fmt.Errorf("load roster of team %s: %w", teamID, err)
				}
				if ok {
					rosters[teamID] = roster
				}
			}
			continue
		}
		slog.Info("auto-refreshing own team roster", "team", teamID)
		roster, err := s.client.TeamRoster(ctx, teamID)
		if err != nil {
			slog.Warn("could not fetch roster", "team", teamID, "err", err)
			if _, loaded := rosters[teamID]; !loaded {
				rosters[teamID] = []leverade.RosterEntry{}
			}
			continue
		}
		rosters[teamID] = roster
		err = s.rosters.Put(ctx, teamID, roster)
		if err != nil {
			return nil, fmt.Errorf("store roster of team %s: %w", teamID, err)
		}
	}
	return rosters, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
