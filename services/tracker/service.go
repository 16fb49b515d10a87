// Package tracker drives the whole pipeline: discover the seasons the
// club played in, collect or load each one, and hand the result to
// the renderer. Finished seasons never change, so each one is fetched
// exactly once and then served from its cache file forever.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"waterpolo-tracker/lib/leverade"
	"waterpolo-tracker/lib/timezone"
	"waterpolo-tracker/services/tracker/rosterstore"
	"waterpolo-tracker/services/tracker/seasoncache"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type StaticryptConfig struct {
	Enabled bool `json:"enabled"`
	// name of the env var holding the site password
	PasswordEnv string `json:"password_env"`
}

type Config struct {
	ClubId        string `json:"club_id"`
	ManagerId     string `json:"manager_id"`
	ApiBaseUrl    string `json:"api_base_url"`
	ClupikBaseUrl string `json:"clupik_base_url"`
	// minimum ms between API requests, 0 means the client default
	RequestDelayMs int              `json:"request_delay_ms"`
	DataDir        string           `json:"data_dir"`
	RosterDb       string           `json:"roster_db"`
	OutputDir      string           `json:"output_dir"`
	Staticrypt     StaticryptConfig `json:"staticrypt"`
}

type Cache = seasoncache.Cache[CategoryData]

type Service struct {
	cfg     Config
	client  *leverade.Client
	cache   Cache
	rosters rosterstore.Store
}

func NewService(cfg Config, client *leverade.Client, cache Cache, rosters rosterstore.Store) *Service {
	return &Service{cfg: cfg, client: client, cache: cache, rosters: rosters}
}

func (s *Service) Config() Config {
	return s.cfg
}

type BuildOptions struct {
	// re-fetch every team roster instead of serving stored copies
	RefreshRosters bool
}

var ErrNoSeasons = errors.New("no season data found for this club")

// BuildSeasons produces the full season list, current season first,
// then finished seasons newest first. Finished seasons come from the
// cache when a cache file exists and are cached after their first
// fetch.
func (s *Service) BuildSeasons(ctx context.Context, opts BuildOptions) ([]SeasonData, error) {
	ctx, span := tracer.Start(ctx, "BuildSeasons")
	defer span.End()

	discovered, err := DiscoverSeasons(ctx, s.client, s.cfg.ManagerId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discover seasons")
		return nil, err
	}
	MergeCurrentSeasons(discovered)

	var seasons []SeasonData
	for _, sid := range sortedSeasonIDs(discovered) {
		info := discovered[sid]

		if !info.HasInProgress {
			cached, ok, err := s.cache.LoadSeason(sid)
			if err != nil {
				return nil, fmt.Errorf("load season cache %s: %w", sid, err)
			}
			if ok {
				seasons = append(seasons, s.cachedSeason(sid, cached))
				continue
			}
		}

		season, ok, err := s.fetchSeason(ctx, sid, info, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch season")
			return nil, err
		}
		if ok {
			seasons = append(seasons, season)
		}
	}

	if len(seasons) == 0 {
		return nil, ErrNoSeasons
	}

	seasons = mergeDuplicateLabels(seasons)
	sortSeasons(seasons)
	span.SetAttributes(attribute.Int("seasons", len(seasons)))
	return seasons, nil
}

func (s *Service) cachedSeason(sid string, payload seasoncache.Payload[CategoryData]) SeasonData {
	startYear := StartYearFromLabel(payload.SeasonLabel)
	refreshedAt := payload.RefreshedAt
	if refreshedAt == "" {
		// old cache files predate the refreshed_at field
		refreshedAt = s.cache.SeasonMtime(sid)
	}
	return SeasonData{
		ID:            sid,
		Label:         payload.SeasonLabel,
		Status:        SeasonFinished,
		Categories:    payload.Tournaments,
		AgeCategories: BuildCategoryAges(startYear),
		RefreshedAt:   refreshedAt,
		AgeRefDate:    fmt.Sprintf("%d-12-31", startYear+1),
		StartYear:     startYear,
	}
}

// fetchSeason collects a season from the API. Finished tournaments
// with a per-tournament cache file skip their API calls. ok is false
// when the club played no tournament of the season.
func (s *Service) fetchSeason(ctx context.Context, sid string, info *SeasonTournaments, opts BuildOptions) (SeasonData, bool, error) {
	ctx, span := tracer.Start(ctx, "fetchSeason")
	defer span.End()
	span.SetAttributes(attribute.String("season.id", sid))

	isCurrent := info.HasInProgress
	slog.Info("fetching season", "season", sid, "current", isCurrent)

	var needAPI []leverade.Tournament
	var categories []CategoryData
	for _, t := range info.Tournaments {
		if t.Status == leverade.StatusFinished {
			cached, ok, err := s.cache.LoadTournament(t.ID)
			if err != nil {
				return SeasonData{}, false, fmt.Errorf("load tournament cache %s: %w", t.ID, err)
			}
			if ok {
				slog.Info("loaded finished tournament from cache", "tournament", t.Name)
				categories = append(categories, cached)
				continue
			}
		}
		needAPI = append(needAPI, t)
	}

	clubTournaments := DiscoverClubTournaments(ctx, s.client, needAPI, s.cfg.ClubId)
	for _, t := range clubTournaments {
		cat, err := s.collectTournament(ctx, t, collectOptions{
			RefreshRosters: opts.RefreshRosters,
			CurrentSeason:  isCurrent,
		})
		if err != nil {
			span.RecordError(err)
			slog.Error("could not collect tournament", "tournament", t.Name, "err", err)
			continue
		}
		if len(cat.Groups) == 0 {
			slog.Info("no groups, skipping tournament", "tournament", t.Name)
			continue
		}
		categories = append(categories, cat)
		if t.Status == leverade.StatusFinished {
			err = s.cache.SaveTournament(t.ID, cat)
			if err != nil {
				return SeasonData{}, false, fmt.Errorf("cache tournament %s: %w", t.ID, err)
			}
		}
	}

	if len(categories) == 0 {
		slog.Info("club played no tournaments this season", "season", sid)
		return SeasonData{}, false, nil
	}

	label, startYear := InferSeasonInfo(categories)
	now := timezone.Now()
	season := SeasonData{
		ID:            sid,
		Label:         label,
		Status:        SeasonCurrent,
		Categories:    categories,
		AgeCategories: BuildCategoryAges(startYear),
		RefreshedAt:   now.Format("02/01/2006 15:04"),
		AgeRefDate:    now.Format("2006-01-02"),
		StartYear:     startYear,
	}
	if !isCurrent {
		season.Status = SeasonFinished
		season.AgeRefDate = fmt.Sprintf("%d-12-31", startYear+1)
		err := s.cache.SaveSeason(seasoncache.Payload[CategoryData]{
			SeasonID:    sid,
			SeasonLabel: label,
			Tournaments: categories,
			RefreshedAt: season.RefreshedAt,
		})
		if err != nil {
			return SeasonData{}, false, fmt.Errorf("cache season %s: %w", sid, err)
		}
		// the whole season is cached now, per-tournament files are
		// redundant
		err = s.cache.CleanupTournaments()
		if err != nil {
			return SeasonData{}, false, err
		}
	}
	return season, true, nil
}

func sortedSeasonIDs(seasons map[string]*SeasonTournaments) []string {
	ids := make([]string, 0, len(seasons))
	for sid := range seasons {
		ids = append(ids, sid)
	}
	slices.Sort(ids)
	return ids
}

// mergeDuplicateLabels folds seasons that resolved to the same label
// into one, keeping the id of whichever has more categories and
// preferring current status. A safety net for API season ids that
// turn out to be the same real season.
func mergeDuplicateLabels(seasons []SeasonData) []SeasonData {
	byLabel := map[string]int{}
	var out []SeasonData
	for _, season := range seasons {
		idx, seen := byLabel[season.Label]
		if !seen {
			byLabel[season.Label] = len(out)
			out = append(out, season)
			continue
		}

		prev := &out[idx]
		slog.Info("merging duplicate season label", "label", season.Label, "from", season.ID, "into", prev.ID)
		if len(season.Categories) > len(prev.Categories) {
			season.Categories = append(season.Categories, prev.Categories...)
			if prev.Status == SeasonCurrent {
				season.Status = SeasonCurrent
			}
			*prev = season
		} else {
			prev.Categories = append(prev.Categories, season.Categories...)
			if season.Status == SeasonCurrent {
				prev.Status = SeasonCurrent
			}
		}
	}
	return out
}

func sortSeasons(seasons []SeasonData) {
	slices.SortStableFunc(seasons, func(a, b SeasonData) int {
		if a.Status != b.Status {
			if a.Status == SeasonCurrent {
				return -1
			}
			return 1
		}
		// newest first
		return strings.Compare(b.Label, a.Label)
	})
}
