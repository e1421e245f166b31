package model

// League is the subset of league settings the pipeline reads.
type League struct {
	LeagueID        string             `json:"league_id"`
	Name            string             `json:"name"`
	Season          string             `json:"season"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
}

// User is a league member.
type User struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TeamName    string `json:"team_name"`
}

// OwnerName prefers the display name over the username.
func (u User) OwnerName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Roster is one fantasy team's player lists and record.
type Roster struct {
	RosterID      int      `json:"roster_id"`
	OwnerID       string   `json:"owner_id"`
	Players       []string `json:"players"`
	Starters      []string `json:"starters"`
	Taxi          []string `json:"taxi"`
	Reserve       []string `json:"reserve"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Ties          int      `json:"ties"`
	PointsFor     float64  `json:"points_for"`
	PointsAgainst float64  `json:"points_against"`
}

// Matchup is one roster's side of a weekly head-to-head game.
type Matchup struct {
	MatchupID       int      `json:"matchup_id"`
	RosterID        int      `json:"roster_id"`
	Starters        []string `json:"starters"`
	Points          float64  `json:"points"`
	ProjectedPoints *float64 `json:"projected_points"`
}

// Transaction is a provider move document kept as received.
type Transaction map[string]any

// Trending holds the most added and dropped players over a lookback window.
type Trending struct {
	Adds  []map[string]any `json:"adds"`
	Drops []map[string]any `json:"drops"`
}
