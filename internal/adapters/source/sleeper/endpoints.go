package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/okian/gridiron/internal/domain/alias"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"
)

// Players returns the full NFL player catalog keyed by player id.
func (c *Client) Players(ctx context.Context) (model.Catalog, error) {
	var raw map[string]map[string]any
	if err := c.getJSON(ctx, "players", "/players/nfl", nil, &raw); err != nil {
		return nil, err
	}
	catalog := make(model.Catalog, len(raw))
	for id, p := range raw {
		full := str(p, "full_name")
		if full == "" {
			full = str(p, "name")
		}
		news, _ := alias.ToFloat(p["news_updated"])
		catalog[id] = model.CatalogEntry{
			PlayerID:        id,
			FullName:        full,
			FirstName:       str(p, "first_name"),
			LastName:        str(p, "last_name"),
			Team:            str(p, "team"),
			Position:        str(p, "position"),
			Status:          str(p, "status"),
			InjuryStatus:    str(p, "injury_status"),
			InjuryBodyPart:  str(p, "injury_body_part"),
			InjuryStartDate: str(p, "injury_start_date"),
			NewsUpdated:     int64(news),
		}
	}
	return catalog, nil
}

type leagueDoc struct {
	LeagueID        string         `json:"league_id"`
	Name            string         `json:"name"`
	Season          string         `json:"season"`
	ScoringSettings map[string]any `json:"scoring_settings"`
}

// League returns the configured league with its scoring settings.
func (c *Client) League(ctx context.Context) (model.League, error) {
	if c.leagueID == "" {
		return model.League{}, ErrNoLeague
	}
	var doc leagueDoc
	if err := c.getJSON(ctx, "league", "/league/"+url.PathEscape(c.leagueID), nil, &doc); err != nil {
		return model.League{}, err
	}
	settings := make(map[string]float64, len(doc.ScoringSettings))
	for k, v := range doc.ScoringSettings {
		if f, ok := alias.ToFloat(v); ok {
			settings[k] = f
		}
	}
	return model.League{LeagueID: doc.LeagueID, Name: doc.Name, Season: doc.Season, ScoringSettings: settings}, nil
}

type userDoc struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

// Users returns the league members.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	if c.leagueID == "" {
		return nil, ErrNoLeague
	}
	var docs []userDoc
	if err := c.getJSON(ctx, "users", "/league/"+url.PathEscape(c.leagueID)+"/users", nil, &docs); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, model.User{
			UserID:      d.UserID,
			Username:    d.Username,
			DisplayName: d.DisplayName,
			TeamName:    d.Metadata.TeamName,
		})
	}
	return users, nil
}

type rosterDoc struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
	Taxi     []string `json:"taxi"`
	Reserve  []string `json:"reserve"`
	Settings struct {
		Wins               int `json:"wins"`
		Losses             int `json:"losses"`
		Ties               int `json:"ties"`
		Fpts               int `json:"fpts"`
		FptsDecimal        int `json:"fpts_decimal"`
		FptsAgainst        int `json:"fpts_against"`
		FptsAgainstDecimal int `json:"fpts_against_decimal"`
	} `json:"settings"`
}

// Rosters returns every roster in the league.
func (c *Client) Rosters(ctx context.Context) ([]model.Roster, error) {
	if c.leagueID == "" {
		return nil, ErrNoLeague
	}
	var docs []rosterDoc
	if err := c.getJSON(ctx, "rosters", "/league/"+url.PathEscape(c.leagueID)+"/rosters", nil, &docs); err != nil {
		return nil, err
	}
	rosters := make([]model.Roster, 0, len(docs))
	for _, d := range docs {
		s := d.Settings
		rosters = append(rosters, model.Roster{
			RosterID:      d.RosterID,
			OwnerID:       d.OwnerID,
			Players:       d.Players,
			Starters:      d.Starters,
			Taxi:          d.Taxi,
			Reserve:       d.Reserve,
			Wins:          s.Wins,
			Losses:        s.Losses,
			Ties:          s.Ties,
			PointsFor:     float64(s.Fpts) + float64(s.FptsDecimal)/100,
			PointsAgainst: float64(s.FptsAgainst) + float64(s.FptsAgainstDecimal)/100,
		})
	}
	return rosters, nil
}

type matchupDoc struct {
	MatchupID       *int     `json:"matchup_id"`
	RosterID        int      `json:"roster_id"`
	Starters        []string `json:"starters"`
	Points          float64  `json:"points"`
	ProjectedPoints *float64 `json:"projected_points"`
}

// Matchups returns one week's matchup sides. A missing matchup id becomes 0.
func (c *Client) Matchups(ctx context.Context, week int) ([]model.Matchup, error) {
	if c.leagueID == "" {
		return nil, ErrNoLeague
	}
	var docs []matchupDoc
	path := fmt.Sprintf("/league/%s/matchups/%d", url.PathEscape(c.leagueID), week)
	if err := c.getJSON(ctx, "matchups", path, nil, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Matchup, 0, len(docs))
	for _, d := range docs {
		m := model.Matchup{RosterID: d.RosterID, Starters: d.Starters, Points: d.Points, ProjectedPoints: d.ProjectedPoints}
		if d.MatchupID != nil {
			m.MatchupID = *d.MatchupID
		}
		out = append(out, m)
	}
	return out, nil
}

// Transactions returns one week's league moves as received.
func (c *Client) Transactions(ctx context.Context, week int) ([]model.Transaction, error) {
	if c.leagueID == "" {
		return nil, ErrNoLeague
	}
	var moves []model.Transaction
	path := fmt.Sprintf("/league/%s/transactions/%d", url.PathEscape(c.leagueID), week)
	if err := c.getJSON(ctx, "transactions", path, nil, &moves); err != nil {
		return nil, err
	}
	if moves == nil {
		moves = []model.Transaction{}
	}
	return moves, nil
}

// WeekStats returns one regular-season week of raw stat rows. The provider
// answers with an object keyed by player id or with a list; both become a
// list, and keyed rows get player_id set from their key. Rows are ordered
// by player id so that equal payloads give equal output.
func (c *Client) WeekStats(ctx context.Context, season, week int) ([]model.RawStats, error) {
	var raw any
	path := fmt.Sprintf("/stats/nfl/%d/%d", season, week)
	q := url.Values{"season_type": {"regular"}}
	if err := c.getJSON(ctx, "week_stats", path, q, &raw); err != nil {
		return nil, err
	}
	switch t := raw.(type) {
	case map[string]any:
		ids := make([]string, 0, len(t))
		for id := range t {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rows := make([]model.RawStats, 0, len(t))
		for _, id := range ids {
			stats, ok := t[id].(map[string]any)
			if !ok {
				continue
			}
			row := make(model.RawStats, len(stats)+1)
			for k, v := range stats {
				switch v.(type) {
				case json.Number, string, float64, bool:
					row[k] = v
				}
			}
			row["player_id"] = id
			rows = append(rows, row)
		}
		return rows, nil
	case []any:
		rows := make([]model.RawStats, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, model.RawStats(m))
			}
		}
		return rows, nil
	default:
		return []model.RawStats{}, nil
	}
}

// Trending returns the most added and dropped players. Each direction tries
// the primary path first and then the mirror path; a direction that fails
// on both comes back empty.
func (c *Client) Trending(ctx context.Context, lookbackHours, limit int) model.Trending {
	return model.Trending{
		Adds:  c.trendingDirection(ctx, "add", lookbackHours, limit),
		Drops: c.trendingDirection(ctx, "drop", lookbackHours, limit),
	}
}

func (c *Client) trendingDirection(ctx context.Context, kind string, lookbackHours, limit int) []map[string]any {
	q := url.Values{
		"type":           {kind},
		"lookback_hours": {strconv.Itoa(lookbackHours)},
		"limit":          {strconv.Itoa(limit)},
	}
	var out []map[string]any
	if err := c.getJSON(ctx, "trending", "/players/trending/nfl", q, &out); err == nil {
		return nonNilMaps(out)
	}
	metrics.RecordSourceFallback("trending")
	out = nil
	if err := c.getJSON(ctx, "trending_fallback", "/players/nfl/trending", q, &out); err != nil {
		return []map[string]any{}
	}
	return nonNilMaps(out)
}

func nonNilMaps(m []map[string]any) []map[string]any {
	if m == nil {
		return []map[string]any{}
	}
	return m
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}
