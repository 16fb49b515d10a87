package tracker

import (
	"context"
	"log/slog"
	"slices"

	"waterpolo-tracker/lib/leverade"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SeasonTournaments is the manager's tournament list for one season.
type SeasonTournaments struct {
	Tournaments   []leverade.Tournament
	HasInProgress bool
}

// DiscoverSeasons groups every in-progress or finished tournament of
// the manager by season id. Tournaments without a season relationship
// land under the "unknown" key.
func DiscoverSeasons(ctx context.Context, client *leverade.Client, managerID string) (map[string]*SeasonTournaments, error) {
	ctx, span := tracer.Start(ctx, "DiscoverSeasons")
	defer span.End()

	tournaments, err := client.ManagerTournaments(ctx, managerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch manager tournaments")
		return nil, err
	}

	seasons := map[string]*SeasonTournaments{}
	for _, t := range tournaments {
		sid := t.SeasonID
		if sid == "" {
			sid = "unknown"
		}
		season, ok := seasons[sid]
		if !ok {
			season = &SeasonTournaments{}
			seasons[sid] = season
		}
		season.Tournaments = append(season.Tournaments, t)
		if t.Status == leverade.StatusInProgress {
			season.HasInProgress = true
		}
	}

	span.SetAttributes(
		attribute.Int("tournaments", len(tournaments)),
		attribute.Int("seasons", len(seasons)),
	)
	slog.Info("discovered seasons", "tournaments", len(tournaments), "seasons", len(seasons))
	return seasons, nil
}

// MergeCurrentSeasons folds multiple "current" season ids into the
// one with the most tournaments. The API sometimes reports separate
// season ids that belong to the same logical season (a placeholder
// season alongside the real one); merging avoids duplicate entries
// in the season selector and saves API calls.
func MergeCurrentSeasons(seasons map[string]*SeasonTournaments) {
	var current []string
	for sid, season := range seasons {
		if season.HasInProgress {
			current = append(current, sid)
		}
	}
	if len(current) < 2 {
		return
	}

	// sorted so ties break the same way every run
	slices.Sort(current)
	primary := current[0]
	for _, sid := range current[1:] {
		if len(seasons[sid].Tournaments) > len(seasons[primary].Tournaments) {
			primary = sid
		}
	}

	for _, sid := range current {
		if sid == primary {
			continue
		}
		slog.Info(
			"merging current season",
			"from", sid,
			"into", primary,
			"tournaments", len(seasons[sid].Tournaments),
		)
		seasons[primary].Tournaments = append(seasons[primary].Tournaments, seasons[sid].Tournaments...)
		delete(seasons, sid)
	}
}

// ClubTournament is a tournament the club has at least one team in.
type ClubTournament struct {
	leverade.Tournament
	OurTeams []TeamRef
}

func effectiveOrder(order int) int {
	if order <= 0 {
		return 999
	}
	return order
}

// DiscoverClubTournaments filters a season's tournaments down to the
// ones with teams belonging to the club, sorted by tournament order.
// Tournaments whose team list cannot be fetched are skipped, one bad
// tournament should not sink the whole build.
func DiscoverClubTournaments(ctx context.Context, client *leverade.Client, tournaments []leverade.Tournament, clubID string) []ClubTournament {
	ctx, span := tracer.Start(ctx, "DiscoverClubTournaments")
	defer span.End()

	var result []ClubTournament
	for _, t := range tournaments {
		teams, err := client.TournamentTeams(ctx, t.ID)
		if err != nil {
			span.RecordError(err)
			slog.Warn("skipping tournament", "tournament", t.Name, "err", err)
			continue
		}

		var ours []TeamRef
		for _, team := range teams {
			if team.ClubID == clubID {
				ours = append(ours, TeamRef{ID: team.ID, Name: team.Name, Avatar: team.Avatar})
			}
		}
		if len(ours) == 0 {
			continue
		}

		result = append(result, ClubTournament{Tournament: t, OurTeams: ours})
		slog.Info("club plays in tournament", "tournament", t.Name, "teams", len(ours))
	}

	slices.SortStableFunc(result, func(a, b ClubTournament) int {
		return effectiveOrder(a.Order) - effectiveOrder(b.Order)
	})
	span.SetAttributes(attribute.Int("club_tournaments", len(result)))
	return result
}
