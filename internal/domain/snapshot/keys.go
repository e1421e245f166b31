package snapshot

import (
	"fmt"
	"time"
)

// Dataset names, also used as metric labels and in meta.datasets.
const (
	DatasetWeekStats    = "player_stats"
	DatasetSeasonToDate = "season_to_date"
	DatasetUsage        = "usage"
	DatasetSOS          = "sos"
	DatasetValues       = "value"
	DatasetRosters      = "rosters"
	DatasetStandings    = "standings"
	DatasetMatchups     = "matchups"
	DatasetTransactions = "transactions"
	DatasetTrending     = "trending"
	DatasetAvailable    = "available"
	DatasetInjuries     = "injuries"
	DatasetMeta         = "meta"
)

// GlueDatasets lists the league datasets advertised in meta.
var GlueDatasets = []string{
	DatasetRosters, DatasetStandings, DatasetMatchups, DatasetTransactions,
	DatasetTrending, DatasetAvailable, DatasetInjuries,
}

// MetaKey is the key of the league meta document.
const MetaKey = "meta"

// CatalogKey is the key of the cached player catalog.
const CatalogKey = "cache/players_nfl"

const dateLayout = "2006-01-02"

func weekKey(dataset string, season, week int) string {
	return fmt.Sprintf("%s/%d/week_%02d", dataset, season, week)
}

// WeekStatsKey names the per-week player stat table.
func WeekStatsKey(season, week int) string { return weekKey(DatasetWeekStats, season, week) }

// SeasonToDateKey names the season-to-date table.
func SeasonToDateKey(season int) string {
	return fmt.Sprintf("%s/%d/season_to_date", DatasetWeekStats, season)
}

// UsageKey names the per-week usage share table.
func UsageKey(season, week int) string { return weekKey(DatasetUsage, season, week) }

// SOSKey names the defense-vs-position table through a week.
func SOSKey(season, throughWeek int) string {
	return fmt.Sprintf("%s/%d/through_week_%02d", DatasetSOS, season, throughWeek)
}

// ValuesKey names the dated trade value table.
func ValuesKey(season int, date time.Time) string {
	return fmt.Sprintf("%s/%d/%s", DatasetValues, season, date.UTC().Format(dateLayout))
}

// RostersKey names the season roster document.
func RostersKey(season int) string { return fmt.Sprintf("%s/%d", DatasetRosters, season) }

// StandingsKey names the season standings document.
func StandingsKey(season int) string { return fmt.Sprintf("%s/%d", DatasetStandings, season) }

// MatchupsKey names one week's matchups.
func MatchupsKey(season, week int) string { return weekKey(DatasetMatchups, season, week) }

// TransactionsKey names one week's transactions.
func TransactionsKey(season, week int) string { return weekKey(DatasetTransactions, season, week) }

// SeasonTransactionsKey names the full-season transaction history.
func SeasonTransactionsKey(season int) string {
	return fmt.Sprintf("%s/%d/season", DatasetTransactions, season)
}

// TrendingKey names the dated trending document.
func TrendingKey(date time.Time) string {
	return fmt.Sprintf("%s/%s", DatasetTrending, date.UTC().Format(dateLayout))
}

// AvailableKey names one week's free agent list.
func AvailableKey(season, week int) string { return weekKey(DatasetAvailable, season, week) }

// InjuriesKey names one week's injury report.
func InjuriesKey(season, week int) string { return weekKey(DatasetInjuries, season, week) }
