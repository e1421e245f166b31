// Package snapshot defines the published documents and their encoding.
// Every document carries the season, its week or date, and a generation
// timestamp; everything else in it is a pure function of the inputs.
package snapshot

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/gridiron/internal/domain/league"
	"github.com/okian/gridiron/internal/domain/model"
)

// codec sorts map keys so equal documents encode to equal bytes.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const timeLayout = "2006-01-02T15:04:05Z"

// Timestamp formats t as a second-precision UTC ISO-8601 string.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

// Encode renders a document as indented JSON with a trailing newline.
func Encode(doc any) ([]byte, error) {
	b, err := codec.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses a stored document into v.
func Decode(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// WeekStats is the per-week player stat table.
type WeekStats struct {
	Season      int            `json:"season"`
	Week        int            `json:"week"`
	GeneratedAt string         `json:"generated_at"`
	Players     []model.Record `json:"players"`
}

// SeasonToDate is the season rollup.
type SeasonToDate struct {
	Season      int               `json:"season"`
	GeneratedAt string            `json:"generated_at"`
	Players     []model.SeasonRow `json:"players"`
}

// Usage is one week's usage share table.
type Usage struct {
	Season      int              `json:"season"`
	Week        int              `json:"week"`
	GeneratedAt string           `json:"generated_at"`
	Players     []model.UsageRow `json:"players"`
}

// SOS is the defense-vs-position table through a week.
type SOS struct {
	Season       int            `json:"season"`
	ThroughWeek  int            `json:"through_week"`
	GeneratedAt  string         `json:"generated_at"`
	DefenseVsPos []model.SOSRow `json:"defense_vs_pos"`
}

// Values is the dated trade value table.
type Values struct {
	Season      int              `json:"season"`
	GeneratedAt string           `json:"generated_at"`
	Values      []model.ValueRow `json:"values"`
}

// Rosters is the decorated roster list for the season.
type Rosters struct {
	Season      int                 `json:"season"`
	GeneratedAt string              `json:"generated_at"`
	LeagueID    string              `json:"league_id"`
	Rosters     []league.RosterView `json:"rosters"`
}

// Standings is the league table.
type Standings struct {
	Season      int               `json:"season"`
	GeneratedAt string            `json:"generated_at"`
	LeagueID    string            `json:"league_id"`
	Standings   []league.Standing `json:"standings"`
}

// Matchups is one week's games.
type Matchups struct {
	Season      int           `json:"season"`
	Week        int           `json:"week"`
	GeneratedAt string        `json:"generated_at"`
	LeagueID    string        `json:"league_id"`
	Games       []league.Game `json:"games"`
}

// Transactions holds moves for one week, or the whole season when Week is nil.
type Transactions struct {
	Season      int                 `json:"season"`
	Week        *int                `json:"week,omitempty"`
	GeneratedAt string              `json:"generated_at"`
	LeagueID    string              `json:"league_id"`
	Moves       []model.Transaction `json:"moves"`
}

// Trending is the dated most-added and most-dropped list.
type Trending struct {
	GeneratedAt   string           `json:"generated_at"`
	LookbackHours int              `json:"lookback_hours"`
	Limit         int              `json:"limit"`
	Adds          []map[string]any `json:"adds"`
	Drops         []map[string]any `json:"drops"`
}

// Available is one week's free agent pool.
type Available struct {
	Season      int                      `json:"season"`
	Week        int                      `json:"week"`
	GeneratedAt string                   `json:"generated_at"`
	LeagueID    string                   `json:"league_id"`
	Count       int                      `json:"count"`
	Players     []league.AvailablePlayer `json:"players"`
}

// Injuries is one week's injury report for rostered players.
type Injuries struct {
	Season      int             `json:"season"`
	Week        int             `json:"week"`
	GeneratedAt string          `json:"generated_at"`
	LeagueID    string          `json:"league_id"`
	Players     []league.Injury `json:"players"`
}

// Meta describes what the latest publish produced.
type Meta struct {
	Season     int      `json:"season"`
	LatestWeek int      `json:"latest_week"`
	UpdatedAt  string   `json:"updated_at"`
	LeagueID   string   `json:"league_id"`
	Datasets   []string `json:"datasets"`
}

// CachedCatalog is the stored form of the player catalog.
type CachedCatalog struct {
	FetchedAt string        `json:"fetched_at"`
	Players   model.Catalog `json:"players"`
}
