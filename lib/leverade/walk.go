package leverade

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// operations materializing the manager → tournament → group → round →
// match resource graph into flat records, one GET per call

type tournamentAttrs struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Order  int    `json:"order"`
	Status string `json:"status"`
}

func (c *Client) ManagerTournaments(ctx context.Context, managerID string) ([]Tournament, error) {
	ctx, span := tracer.Start(ctx, "ManagerTournaments")
	defer span.End()
	span.SetAttributes(attribute.String("manager_id", managerID))

	query := url.Values{}
	query.Set("include", "tournaments")
	doc, err := c.get(ctx, "managers/"+managerID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch manager")
		return nil, err
	}

	var out []Tournament
	for _, inc := range doc.IncludedOfType("tournament") {
		var attrs tournamentAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		if attrs.Status != StatusInProgress && attrs.Status != StatusFinished {
			continue
		}
		seasonID := ""
		if season, ok := inc.Rel("season").One(); ok {
			seasonID = season.ID.String()
		}
		out = append(out, Tournament{
			ID:       inc.ID.String(),
			Name:     attrs.Name,
			Gender:   attrs.Gender,
			Order:    attrs.Order,
			SeasonID: seasonID,
			Status:   attrs.Status,
		})
	}
	return out, nil
}

type teamAttrs struct {
	Name string `json:"name"`
}

type teamMeta struct {
	Avatar struct {
		Large string `json:"large"`
	} `json:"avatar"`
}

func (c *Client) TournamentTeams(ctx context.Context, tournamentID string) ([]Team, error) {
	ctx, span := tracer.Start(ctx, "TournamentTeams")
	defer span.End()
	span.SetAttributes(attribute.String("tournament_id", tournamentID))

	query := url.Values{}
	query.Set("include", "teams")
	doc, err := c.get(ctx, "tournaments/"+tournamentID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tournament teams")
		return nil, err
	}

	var out []Team
	for _, inc := range doc.IncludedOfType("team") {
		var attrs teamAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		clubID := ""
		if club, ok := inc.Rel("club").One(); ok {
			clubID = club.ID.String()
		}
		var meta teamMeta
		if len(inc.Meta) > 0 {
			json.Unmarshal(inc.Meta, &meta)
		}
		out = append(out, Team{
			ID:     inc.ID.String(),
			Name:   attrs.Name,
			ClubID: clubID,
			Avatar: meta.Avatar.Large,
		})
	}
	return out, nil
}

type groupAttrs struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
	Type  string `json:"type"`
}

func (c *Client) TournamentGroups(ctx context.Context, tournamentID string) ([]Group, error) {
	ctx, span := tracer.Start(ctx, "TournamentGroups")
	defer span.End()
	span.SetAttributes(attribute.String("tournament_id", tournamentID))

	query := url.Values{}
	query.Set("include", "groups")
	doc, err := c.get(ctx, "tournaments/"+tournamentID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tournament groups")
		return nil, err
	}

	var out []Group
	for _, inc := range doc.IncludedOfType("group") {
		var attrs groupAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, Group{
			ID:    inc.ID.String(),
			Name:  attrs.Name,
			Order: attrs.Order,
			Type:  attrs.Type,
		})
	}
	slices.SortStableFunc(out, func(a, b Group) int {
		return a.Order - b.Order
	})
	return out, nil
}

type roundAttrs struct {
	Name      string `json:"name"`
	Order     int    `json:"order"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (c *Client) GroupRounds(ctx context.Context, groupID string) ([]Round, error) {
	ctx, span := tracer.Start(ctx, "GroupRounds")
	defer span.End()
	span.SetAttributes(attribute.String("group_id", groupID))

	query := url.Values{}
	query.Set("include", "rounds")
	doc, err := c.get(ctx, "groups/"+groupID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch group rounds")
		return nil, err
	}

	var out []Round
	for _, inc := range doc.IncludedOfType("round") {
		var attrs roundAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, Round{
			ID:        inc.ID.String(),
			Name:      attrs.Name,
			Order:     attrs.Order,
			StartDate: attrs.StartDate,
			EndDate:   attrs.EndDate,
		})
	}
	slices.SortStableFunc(out, func(a, b Round) int {
		return a.Order - b.Order
	})
	return out, nil
}

type matchAttrs struct {
	Date      string `json:"date"`
	Finished  bool   `json:"finished"`
	Canceled  bool   `json:"canceled"`
	Postponed bool   `json:"postponed"`
	Rest      bool   `json:"rest"`
}

type matchMeta struct {
	HomeTeam FlexID `json:"home_team"`
	AwayTeam FlexID `json:"away_team"`
}

type resultAttrs struct {
	Value int  `json:"value"`
	Score bool `json:"score"`
}

type facilityAttrs struct {
	Name string `json:"name"`
}

func (c *Client) RoundMatches(ctx context.Context, roundID string) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "RoundMatches")
	defer span.End()
	span.SetAttributes(attribute.String("round_id", roundID))

	query := url.Values{}
	query.Set("include", "matches.results,matches.facility")
	doc, err := c.get(ctx, "rounds/"+roundID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch round matches")
		return nil, err
	}

	results := map[string]Result{}
	facilities := map[string]string{}
	for _, inc := range doc.Included {
		switch inc.Type {
		case "result":
			var attrs resultAttrs
			err := json.Unmarshal(inc.Attributes, &attrs)
			if err != nil {
				span.RecordError(err)
				continue
			}
			r := Result{Value: attrs.Value, Score: attrs.Score}
			if team, ok := inc.Rel("team").One(); ok {
				r.TeamID = team.ID.String()
			}
			if match, ok := inc.Rel("match").One(); ok {
				r.MatchID = match.ID.String()
			}
			results[inc.ID.String()] = r
		case "facility":
			var attrs facilityAttrs
			err := json.Unmarshal(inc.Attributes, &attrs)
			if err != nil {
				span.RecordError(err)
				continue
			}
			facilities[inc.ID.String()] = attrs.Name
		}
	}

	var out []Match
	for _, inc := range doc.IncludedOfType("match") {
		var attrs matchAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		var meta matchMeta
		if len(inc.Meta) > 0 {
			json.Unmarshal(inc.Meta, &meta)
		}

		m := Match{
			ID:        inc.ID.String(),
			Date:      attrs.Date,
			Finished:  attrs.Finished,
			Canceled:  attrs.Canceled,
			Postponed: attrs.Postponed,
			Rest:      attrs.Rest,
			HomeTeam:  meta.HomeTeam.String(),
			AwayTeam:  meta.AwayTeam.String(),
		}
		if facility, ok := inc.Rel("facility").One(); ok {
			m.Venue = facilities[facility.ID.String()]
		}
		for _, ref := range inc.Rel("results").Many() {
			r, ok := results[ref.ID.String()]
			if ok {
				m.Results = append(m.Results, r)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

type standingsMeta struct {
	Rows []struct {
		ID       FlexID `json:"id"`
		Name     string `json:"name"`
		Position int    `json:"position"`
		Stats    []struct {
			Type  string `json:"type"`
			Value int    `json:"value"`
		} `json:"standingsstats"`
	} `json:"standingsrows"`
}

func (c *Client) GroupStandings(ctx context.Context, groupID string) ([]StandingRow, error) {
	ctx, span := tracer.Start(ctx, "GroupStandings")
	defer span.End()
	span.SetAttributes(attribute.String("group_id", groupID))

	doc, err := c.get(ctx, "groups/"+groupID+"/standings", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch standings")
		return nil, err
	}

	var meta standingsMeta
	if len(doc.Meta) > 0 {
		err = json.Unmarshal(doc.Meta, &meta)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode standings meta")
			return nil, err
		}
	}

	var out []StandingRow
	for _, row := range meta.Rows {
		stats := map[string]int{}
		for _, s := range row.Stats {
			stats[s.Type] = s.Value
		}
		out = append(out, StandingRow{
			TeamID:       row.ID.String(),
			Name:         row.Name,
			Position:     row.Position,
			Points:       stats["score"],
			Played:       stats["played_matches"],
			Won:          stats["won_matches"],
			Drawn:        stats["drawn_matches"],
			Lost:         stats["lost_matches"],
			GoalsFor:     stats["value"],
			GoalsAgainst: stats["value_against"],
			GoalDiff:     stats["value_difference"],
		})
	}
	slices.SortStableFunc(out, func(a, b StandingRow) int {
		return a.Position - b.Position
	})
	return out, nil
}

func (c *Client) TeamName(ctx context.Context, teamID string) (string, error) {
	ctx, span := tracer.Start(ctx, "TeamName")
	defer span.End()
	span.SetAttributes(attribute.String("team_id", teamID))

	doc, err := c.get(ctx, "teams/"+teamID, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch team")
		return "", err
	}
	res, err := doc.Resource()
	if err != nil {
		return "", err
	}
	var attrs teamAttrs
	err = json.Unmarshal(res.Attributes, &attrs)
	if err != nil {
		return "", err
	}
	return attrs.Name, nil
}

type profileAttrs struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthdate string `json:"birthdate"`
}

type licenseAttrs struct {
	Type string `json:"type"`
}

func (c *Client) TeamRoster(ctx context.Context, teamID string) ([]RosterEntry, error) {
	ctx, span := tracer.Start(ctx, "TeamRoster")
	defer span.End()
	span.SetAttributes(attribute.String("team_id", teamID))

	query := url.Values{}
	query.Set("include", "participants.license.profile")
	doc, err := c.get(ctx, "teams/"+teamID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}

	profiles := map[string]profileAttrs{}
	for _, inc := range doc.IncludedOfType("profile") {
		var attrs profileAttrs
		err := json.Unmarshal(inc.Attributes, &attrs)
		if err != nil {
			span.RecordError(err)
			continue
		}
		profiles[inc.ID.String()] = attrs
	}
	licenses := map[string]Resource{}
	for _, inc := range doc.IncludedOfType("license") {
		licenses[inc.ID.String()] = inc
	}

	var out []RosterEntry
	for _, p := range doc.IncludedOfType("participant") {
		licRef, ok := p.Rel("license").One()
		if !ok {
			continue
		}
		lic, ok := licenses[licRef.ID.String()]
		if !ok {
			continue
		}
		var licAttrs licenseAttrs
		json.Unmarshal(lic.Attributes, &licAttrs)
		role := licAttrs.Type
		if role == "" {
			role = "unknown"
		}

		profileRef, ok := lic.Rel("profile").One()
		if !ok {
			continue
		}
		profile := profiles[profileRef.ID.String()]
		if profile.FirstName == "" {
			continue
		}
		out = append(out, RosterEntry{
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Birthdate: profile.Birthdate,
			Role:      role,
		})
	}

	// players first, then staff, alphabetical within each
	slices.SortStableFunc(out, func(a, b RosterEntry) int {
		ra, rb := 1, 1
		if a.Role == "player" {
			ra = 0
		}
		if b.Role == "player" {
			rb = 0
		}
		if ra != rb {
			return ra - rb
		}
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return strings.Compare(a.FirstName, b.FirstName)
	})
	return out, nil
}
