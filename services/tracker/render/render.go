// Package render turns collected season data into a single static
// HTML page. All interactivity happens client side: the page embeds
// the full dataset as JSON and a small script renders standings,
// results and rosters from it, so the output needs nothing but a
// web server that can serve one file.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"time"

	"waterpolo-tracker/lib/textutil"
	"waterpolo-tracker/lib/timezone"
	"waterpolo-tracker/services/tracker"
)

//go:embed template.html assets
var files embed.FS

const DefaultClupikBaseUrl = "https://clupik.pro"

type Options struct {
	ClupikBaseUrl string
	// page build timestamp, zero means now
	Now time.Time
}

// wire format of the embedded JSON, keys are kept short because the
// whole dataset ships inside the page

type wireStanding struct {
	ID  string `json:"id"`
	N   string `json:"n"`
	Pos int    `json:"pos"`
	Pts int    `json:"pts"`
	Pj  int    `json:"pj"`
	Pg  int    `json:"pg"`
	Pe  int    `json:"pe"`
	Pp  int    `json:"pp"`
	Gf  int    `json:"gf"`
	Gc  int    `json:"gc"`
	Dg  int    `json:"dg"`
}

type wireGroup struct {
	ID string         `json:"id"`
	N  string         `json:"n"`
	S  []wireStanding `json:"s"`
}

type wireMatch struct {
	D  string `json:"d"`
	F  bool   `json:"f"`
	H  string `json:"h"`
	A  string `json:"a"`
	Hs *int   `json:"hs"`
	As *int   `json:"as"`
	Rn string `json:"rn"`
	Gn string `json:"gn"`
	V  string `json:"v"`
}

type wireEntry struct {
	Tid     string            `json:"tid"`
	Tname   string            `json:"tname"`
	Label   string            `json:"label"`
	Dt      string            `json:"dt"`
	Teams   map[string]string `json:"teams"`
	Groups  []wireGroup       `json:"groups"`
	Matches []wireMatch       `json:"matches"`
}

type wireRosterEntry struct {
	Fn string `json:"fn"`
	Ln string `json:"ln"`
	Bd string `json:"bd"`
	Ro string `json:"ro"`
}

type wireSeason struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
	AgeRef  string `json:"ageRef"`
	Ra      string `json:"ra"`
}

// view model for template.html

type teamOption struct {
	ID       string
	Name     string
	Selected bool
}

type catCard struct {
	CatID    string
	Label    string
	AgeLabel string
	NumTeams int
	Played   int
}

type teamCard struct {
	EntryID   string
	TeamName  string
	Wins      int
	Draws     int
	Losses    int
	NextLabel template.HTML
}

type teamPanel struct {
	CatID string
	Label string
	Cards []teamCard
}

type seasonBlock struct {
	ID     string
	Active bool
	Cards  []catCard
	Panels []teamPanel
}

type detailSection struct {
	EntryID        string
	CatID          string
	CatLabel       string
	TournamentName string
	NumTeams       int
	TeamOptions    []teamOption
}

type seasonOption struct {
	ID       string
	Label    string
	Current  bool
	Selected bool
}

type pageData struct {
	TotalCats          int
	ShowSeasonSelector bool
	SeasonOptions      []seasonOption
	Seasons            []seasonBlock
	Details            []detailSection
	BuildTime          string
	CSS                template.CSS
	JS                 template.JS
	WPJSON             template.JS
	ROSTJSON           template.JS
	SEASONSJSON        template.JS
	Clupik             string
	DefaultSeason      string
}

// one of the club's teams inside one tournament, the unit the detail
// screen works with
type entry struct {
	seasonID string
	cat      tracker.CategoryData
	team     tracker.TeamRef
}

func (e entry) catID() string {
	return fmt.Sprintf("s%s-%s", e.seasonID, textutil.Slug(e.cat.TournamentName))
}

func (e entry) entryID() string {
	return fmt.Sprintf("s%s-%s", e.seasonID, textutil.Slug(e.cat.TournamentName+"-"+e.team.Name))
}

func (e entry) teamMatches() []tracker.MatchRecord {
	var out []tracker.MatchRecord
	for _, m := range e.cat.Matches {
		if m.HomeTeam == e.team.ID || m.AwayTeam == e.team.ID {
			out = append(out, m)
		}
	}
	return out
}

func formatDateShort(date string) string {
	if date == "" {
		return "TBD"
	}
	t, err := timezone.ParseMatchTime(date)
	if err != nil {
		return date
	}
	return t.Format("02/01 15:04")
}

const (
	resultWin  = "win"
	resultLoss = "loss"
	resultDraw = "draw"
)

func resultClass(m tracker.MatchRecord, teamID string) string {
	if !m.Finished {
		return "upcoming"
	}
	home, away := m.Score()
	if home == nil || away == nil {
		return "unknown"
	}
	ours, theirs := *home, *away
	if m.AwayTeam == teamID {
		ours, theirs = theirs, ours
	}
	switch {
	case ours > theirs:
		return resultWin
	case ours < theirs:
		return resultLoss
	}
	return resultDraw
}

// Render produces the complete index.html contents.
func Render(seasons []tracker.SeasonData, opts Options) ([]byte, error) {
	if len(seasons) == 0 {
		return nil, errors.New("render: no seasons")
	}
	if opts.ClupikBaseUrl == "" {
		opts.ClupikBaseUrl = DefaultClupikBaseUrl
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	defaultSeason := seasons[0].ID
	for _, s := range seasons {
		if s.Status == tracker.SeasonCurrent {
			defaultSeason = s.ID
			break
		}
	}

	data := pageData{
		BuildTime:     now.UTC().Format("02/01/2006 15:04 UTC"),
		Clupik:        opts.ClupikBaseUrl,
		DefaultSeason: defaultSeason,
	}

	wp := map[string]wireEntry{}
	rost := map[string][]wireRosterEntry{}
	var wireSeasons []wireSeason

	for _, season := range seasons {
		isDefault := season.ID == defaultSeason

		data.SeasonOptions = append(data.SeasonOptions, seasonOption{
			ID:       season.ID,
			Label:    season.Label,
			Current:  season.Status == tracker.SeasonCurrent,
			Selected: isDefault,
		})
		wireSeasons = append(wireSeasons, wireSeason{
			ID:      season.ID,
			Label:   season.Label,
			Current: season.Status == tracker.SeasonCurrent,
			AgeRef:  season.AgeRefDate,
			Ra:      season.RefreshedAt,
		})

		// youngest categories first
		categories := slices.Clone(season.Categories)
		slices.SortStableFunc(categories, func(a, b tracker.CategoryData) int {
			ao, _ := tracker.CategoryAgeInfo(a.TournamentName, season.AgeCategories)
			bo, _ := tracker.CategoryAgeInfo(b.TournamentName, season.AgeCategories)
			return ao - bo
		})

		block := seasonBlock{ID: season.ID, Active: isDefault}
		for _, cat := range categories {
			var entries []entry
			for _, team := range cat.OurTeams {
				entries = append(entries, entry{seasonID: season.ID, cat: cat, team: team})
			}
			if len(entries) == 0 {
				continue
			}

			_, ageLabel := tracker.CategoryAgeInfo(cat.TournamentName, season.AgeCategories)
			label := textutil.ShortCategory(cat.TournamentName)
			catID := entries[0].catID()

			played := 0
			panel := teamPanel{CatID: catID, Label: label}
			for _, e := range entries {
				card := teamCard{EntryID: e.entryID(), TeamName: e.team.Name}
				var future []tracker.MatchRecord
				for _, m := range e.teamMatches() {
					if m.Finished {
						played++
						switch resultClass(m, e.team.ID) {
						case resultWin:
							card.Wins++
						case resultLoss:
							card.Losses++
						default:
							card.Draws++
						}
					} else if m.Date != "" {
						future = append(future, m)
					}
				}
				if len(future) > 0 {
					next := slices.MinFunc(future, func(a, b tracker.MatchRecord) int {
						switch {
						case a.Date < b.Date:
							return -1
						case a.Date > b.Date:
							return 1
						}
						return 0
					})
					home := cat.TeamNames[next.HomeTeam]
					away := cat.TeamNames[next.AwayTeam]
					if next.AwayTeam == "" {
						away = "Descansa"
					}
					card.NextLabel = template.HTML(fmt.Sprintf(
						"Proper: <strong>%s</strong> %s vs %s",
						template.HTMLEscapeString(formatDateShort(next.Date)),
						template.HTMLEscapeString(home),
						template.HTMLEscapeString(away),
					))
				}
				panel.Cards = append(panel.Cards, card)

				we, options := buildWireEntry(e)
				wp[e.entryID()] = we
				collectRosters(rost, cat)
				data.Details = append(data.Details, detailSection{
					EntryID:        e.entryID(),
					CatID:          catID,
					CatLabel:       label,
					TournamentName: cat.TournamentName,
					NumTeams:       len(entries),
					TeamOptions:    options,
				})
			}

			block.Cards = append(block.Cards, catCard{
				CatID:    catID,
				Label:    label,
				AgeLabel: ageLabel,
				NumTeams: len(entries),
				Played:   played,
			})
			block.Panels = append(block.Panels, panel)
		}

		if isDefault {
			data.TotalCats = len(block.Cards)
		}
		data.Seasons = append(data.Seasons, block)
	}

	data.ShowSeasonSelector = len(seasons) > 1

	var err error
	data.WPJSON, err = marshalJS(wp)
	if err != nil {
		return nil, err
	}
	data.ROSTJSON, err = marshalJS(rost)
	if err != nil {
		return nil, err
	}
	data.SEASONSJSON, err = marshalJS(wireSeasons)
	if err != nil {
		return nil, err
	}

	css, err := files.ReadFile("assets/styles.css")
	if err != nil {
		return nil, err
	}
	js, err := files.ReadFile("assets/app.js")
	if err != nil {
		return nil, err
	}
	data.CSS = template.CSS(css)
	data.JS = template.JS(js)

	tmpl, err := template.ParseFS(files, "template.html")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildWireEntry(e entry) (wireEntry, []teamOption) {
	we := wireEntry{
		Tid:   e.cat.TournamentID,
		Tname: e.cat.TournamentName,
		Label: textutil.ShortCategory(e.cat.TournamentName),
		Dt:    e.team.ID,
		Teams: map[string]string{},
	}

	standingIDs := map[string]bool{}
	var options []teamOption
	for _, g := range e.cat.Groups {
		wg := wireGroup{ID: g.ID, N: g.Name}
		for _, row := range g.Standings {
			standingIDs[row.TeamID] = true
			wg.S = append(wg.S, wireStanding{
				ID: row.TeamID, N: row.Name, Pos: row.Position,
				Pts: row.Points, Pj: row.Played, Pg: row.Won,
				Pe: row.Drawn, Pp: row.Lost, Gf: row.GoalsFor,
				Gc: row.GoalsAgainst, Dg: row.GoalDiff,
			})
			if !slices.ContainsFunc(options, func(o teamOption) bool { return o.ID == row.TeamID }) {
				options = append(options, teamOption{
					ID:       row.TeamID,
					Name:     row.Name,
					Selected: row.TeamID == e.team.ID,
				})
			}
		}
		we.Groups = append(we.Groups, wg)
	}

	seen := map[string]bool{}
	for _, m := range e.cat.Matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		home, away := m.Score()
		we.Matches = append(we.Matches, wireMatch{
			D: m.Date, F: m.Finished,
			H: m.HomeTeam, A: m.AwayTeam,
			Hs: home, As: away,
			Rn: m.RoundName, Gn: m.GroupName, V: m.Venue,
		})
	}

	for id, name := range e.cat.TeamNames {
		if standingIDs[id] || id == e.team.ID {
			we.Teams[id] = name
		}
	}
	return we, options
}

func collectRosters(rost map[string][]wireRosterEntry, cat tracker.CategoryData) {
	for teamID, roster := range cat.Rosters {
		if len(roster) == 0 {
			continue
		}
		if _, ok := rost[teamID]; ok {
			continue
		}
		entries := make([]wireRosterEntry, 0, len(roster))
		for _, p := range roster {
			entries = append(entries, wireRosterEntry{
				Fn: p.FirstName, Ln: p.LastName, Bd: p.Birthdate, Ro: p.Role,
			})
		}
		rost[teamID] = entries
	}
}

func marshalJS(v any) (template.JS, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(out), nil
}

// WriteSite renders the page and writes index.html plus a robots.txt
// that keeps crawlers away from the club data.
func WriteSite(dir string, seasons []tracker.SeasonData, opts Options) error {
	html, err := Render(seasons, opts)
	if err != nil {
		return err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	err = os.WriteFile(filepath.Join(dir, "index.html"), html, 0644)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *\nDisallow: /\n"), 0644)
}
