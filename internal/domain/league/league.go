// Package league builds the league glue datasets: rosters, standings,
// matchups, transactions, free agents and injuries.
package league

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/normalize"
)

// PlayerRef is a player id decorated with catalog metadata.
type PlayerRef struct {
	PlayerID        string `json:"player_id"`
	FullName        string `json:"full_name"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Team            string `json:"team"`
	Position        string `json:"position"`
	Status          string `json:"status"`
	InjuryStatus    string `json:"injury_status"`
	InjuryBodyPart  string `json:"injury_body_part"`
	InjuryStartDate string `json:"injury_start_date"`
	NewsUpdated     int64  `json:"news_updated"`
}

// RosterView is a roster with its owner and decorated lineup.
type RosterView struct {
	RosterID      int         `json:"roster_id"`
	OwnerID       string      `json:"owner_id"`
	Owner         string      `json:"owner"`
	TeamName      string      `json:"team_name"`
	Wins          int         `json:"wins"`
	Losses        int         `json:"losses"`
	Ties          int         `json:"ties"`
	PointsFor     float64     `json:"points_for"`
	PointsAgainst float64     `json:"points_against"`
	Starters      []PlayerRef `json:"starters"`
	Bench         []PlayerRef `json:"bench"`
	Taxi          []string    `json:"taxi"`
	IR            []string    `json:"ir"`
}

// Standing is one row of the league table.
type Standing struct {
	RosterID  int     `json:"roster_id"`
	Owner     string  `json:"owner"`
	TeamName  string  `json:"team_name"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Ties      int     `json:"ties"`
	WinPct    float64 `json:"win_pct"`
	PointsFor float64 `json:"points_for"`
}

// MatchupTeam is one side of a game.
type MatchupTeam struct {
	RosterID        int      `json:"roster_id"`
	Owner           string   `json:"owner"`
	Starters        []string `json:"starters"`
	Points          float64  `json:"points"`
	ProjectedPoints *float64 `json:"projected_points"`
}

// Game groups the sides sharing a matchup id.
type Game struct {
	MatchupID int           `json:"matchup_id"`
	Teams     []MatchupTeam `json:"teams"`
}

// AvailablePlayer is an unrostered player at a known position.
type AvailablePlayer struct {
	PlayerID string `json:"player_id"`
	FullName string `json:"full_name"`
	Team     string `json:"team"`
	Position string `json:"position"`
	Status   string `json:"status"`
}

// Injury is a rostered player carrying an injury designation.
type Injury struct {
	PlayerID        string `json:"player_id"`
	FullName        string `json:"full_name"`
	Team            string `json:"team"`
	Position        string `json:"position"`
	InjuryStatus    string `json:"injury_status"`
	InjuryBodyPart  string `json:"injury_body_part"`
	InjuryStartDate string `json:"injury_start_date"`
	NewsUpdated     int64  `json:"news_updated"`
}

// Decorate looks a player up in the catalog. Unknown ids keep only the id.
func Decorate(id string, catalog model.Catalog) PlayerRef {
	c := catalog[id]
	return PlayerRef{
		PlayerID:        id,
		FullName:        c.DisplayName(),
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Team:            c.Team,
		Position:        c.Position,
		Status:          c.Status,
		InjuryStatus:    c.InjuryStatus,
		InjuryBodyPart:  c.InjuryBodyPart,
		InjuryStartDate: c.InjuryStartDate,
		NewsUpdated:     c.NewsUpdated,
	}
}

// Rosters decorates every roster and returns the set of rostered player ids.
func Rosters(rosters []model.Roster, users []model.User, catalog model.Catalog) ([]RosterView, map[string]struct{}) {
	byID := usersByID(users)
	rostered := make(map[string]struct{})
	out := make([]RosterView, 0, len(rosters))
	for _, r := range rosters {
		starting := make(map[string]struct{}, len(r.Starters))
		starters := make([]PlayerRef, 0, len(r.Starters))
		for _, id := range r.Starters {
			if id == "" || id == "0" {
				continue
			}
			starting[id] = struct{}{}
			starters = append(starters, Decorate(id, catalog))
		}
		bench := make([]PlayerRef, 0, len(r.Players))
		for _, id := range r.Players {
			if id == "" {
				continue
			}
			rostered[id] = struct{}{}
			if _, ok := starting[id]; ok {
				continue
			}
			bench = append(bench, Decorate(id, catalog))
		}
		u := byID[r.OwnerID]
		out = append(out, RosterView{
			RosterID:      r.RosterID,
			OwnerID:       r.OwnerID,
			Owner:         u.OwnerName(),
			TeamName:      u.TeamName,
			Wins:          r.Wins,
			Losses:        r.Losses,
			Ties:          r.Ties,
			PointsFor:     r.PointsFor,
			PointsAgainst: r.PointsAgainst,
			Starters:      starters,
			Bench:         bench,
			Taxi:          nonNil(r.Taxi),
			IR:            nonNil(r.Reserve),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RosterID < out[j].RosterID })
	return out, rostered
}

// WinPct counts a tie as half a win.
func WinPct(w, l, t int) float64 {
	return (float64(w) + 0.5*float64(t)) / float64(max(1, w+l+t))
}

// Standings ranks rosters by wins, then win pct, then points for.
func Standings(rosters []RosterView) []Standing {
	rows := make([]Standing, 0, len(rosters))
	for _, r := range rosters {
		rows = append(rows, Standing{
			RosterID:  r.RosterID,
			Owner:     r.Owner,
			TeamName:  r.TeamName,
			Wins:      r.Wins,
			Losses:    r.Losses,
			Ties:      r.Ties,
			WinPct:    WinPct(r.Wins, r.Losses, r.Ties),
			PointsFor: r.PointsFor,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinPct != b.WinPct {
			return a.WinPct > b.WinPct
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		return a.RosterID < b.RosterID
	})
	return rows
}

// Games groups matchup sides by matchup id, ascending. Sides keep their
// input order within a game. The owner label prefers the team name.
func Games(matchups []model.Matchup, rosters []model.Roster, users []model.User) []Game {
	byUser := usersByID(users)
	owners := make(map[int]string, len(rosters))
	for _, r := range rosters {
		u := byUser[r.OwnerID]
		if u.TeamName != "" {
			owners[r.RosterID] = u.TeamName
		} else {
			owners[r.RosterID] = u.OwnerName()
		}
	}

	grouped := make(map[int][]MatchupTeam)
	for _, m := range matchups {
		grouped[m.MatchupID] = append(grouped[m.MatchupID], MatchupTeam{
			RosterID:        m.RosterID,
			Owner:           owners[m.RosterID],
			Starters:        nonNil(m.Starters),
			Points:          m.Points,
			ProjectedPoints: m.ProjectedPoints,
		})
	}
	games := make([]Game, 0, len(grouped))
	for id, teams := range grouped {
		games = append(games, Game{MatchupID: id, Teams: teams})
	}
	sort.Slice(games, func(i, j int) bool { return games[i].MatchupID < games[j].MatchupID })
	return games
}

// Available lists catalog players at known positions that nobody rosters,
// sorted by position then name.
func Available(catalog model.Catalog, rostered map[string]struct{}) []AvailablePlayer {
	out := make([]AvailablePlayer, 0)
	for id, c := range catalog {
		pos := normalize.Position(c.Position)
		if pos == "" {
			continue
		}
		if _, ok := rostered[id]; ok {
			continue
		}
		out = append(out, AvailablePlayer{
			PlayerID: id,
			FullName: c.DisplayName(),
			Team:     c.Team,
			Position: pos,
			Status:   c.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.PlayerID < b.PlayerID
	})
	return out
}

// Injuries lists rostered players with an injury status. Players missing
// a position sort last.
func Injuries(catalog model.Catalog, rostered map[string]struct{}) []Injury {
	out := make([]Injury, 0)
	for id := range rostered {
		c, ok := catalog[id]
		if !ok || c.InjuryStatus == "" {
			continue
		}
		out = append(out, Injury{
			PlayerID:        id,
			FullName:        c.DisplayName(),
			Team:            c.Team,
			Position:        c.Position,
			InjuryStatus:    c.InjuryStatus,
			InjuryBodyPart:  c.InjuryBodyPart,
			InjuryStartDate: c.InjuryStartDate,
			NewsUpdated:     c.NewsUpdated,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		pa, pb := sortPos(a.Position), sortPos(b.Position)
		if pa != pb {
			return pa < pb
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.PlayerID < b.PlayerID
	})
	return out
}

// TaggedMoves copies moves and stamps each with the week it happened in.
func TaggedMoves(week int, moves []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(moves))
	for _, m := range moves {
		t := make(model.Transaction, len(m)+1)
		for k, v := range m {
			t[k] = v
		}
		t["week"] = week
		out = append(out, t)
	}
	return out
}

func sortPos(p string) string {
	if p == "" {
		return "ZZ"
	}
	return p
}

func usersByID(users []model.User) map[string]model.User {
	m := make(map[string]model.User, len(users))
	for _, u := range users {
		m[u.UserID] = u
	}
	return m
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
