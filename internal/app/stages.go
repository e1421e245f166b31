package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	workerpool "github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/league"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/normalize"
	"github.com/okian/gridiron/internal/domain/scoring"
	"github.com/okian/gridiron/internal/domain/season"
	"github.com/okian/gridiron/internal/domain/snapshot"
	"github.com/okian/gridiron/internal/domain/sos"
	"github.com/okian/gridiron/internal/domain/usage"
	"github.com/okian/gridiron/internal/domain/value"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

func validate(seasonYear, week int) error {
	if seasonYear <= 0 {
		return ErrInvalidSeason
	}
	if week < 1 {
		return ErrInvalidWeek
	}
	return nil
}

func (s *Service) buildStats(ctx context.Context, log logger.Logger, seasonYear, week int) (StatsReport, error) {
	report := StatsReport{Season: seasonYear, Week: week, FailedWeeks: []int{}, Keys: []string{}}
	if err := validate(seasonYear, week); err != nil {
		return report, err
	}

	catalog := s.catalog.Catalog(ctx)
	engine := scoring.NewEngine(
		scoring.WithLeagueSettings(s.leagueScoring(ctx, log)),
		scoring.WithOverrides(s.scoringOverrides),
	)

	weeks := make([]int, 0, week)
	for w := 1; w <= week; w++ {
		weeks = append(weeks, w)
	}
	results, err := workerpool.FetchWeeks(ctx, s.source, seasonYear, weeks, s.workerCount)
	if err != nil {
		return report, fmt.Errorf("fetch weeks: %w", err)
	}

	generated := snapshot.Timestamp(s.now())
	sets := make([]model.WeekSet, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			// A failed week contributes no rows but the season still builds.
			report.FailedWeeks = append(report.FailedWeeks, r.Week)
			metrics.RecordSourceFallback("week_stats")
			log.Warn(ctx, "week stats unavailable, using empty week",
				logger.Int("week", r.Week), logger.Error(r.Err))
		}
		set, rep := normalize.Week(r.Week, r.Rows, catalog)
		set = engine.Apply(set)
		sets = append(sets, set)

		dropped := rep.NoIdentity + rep.Duplicates
		report.Dropped += dropped
		metrics.RecordNormalized(fmt.Sprintf("%d", r.Week), rep.Kept)
		if rep.NoIdentity > 0 {
			metrics.RecordDropped("no_identity", rep.NoIdentity)
		}
		if rep.Duplicates > 0 {
			metrics.RecordDropped("duplicate", rep.Duplicates)
		}
		if dropped > 0 {
			log.Debug(ctx, "dropped stat rows",
				logger.Int("week", r.Week),
				logger.Int("no_identity", rep.NoIdentity),
				logger.Int("duplicates", rep.Duplicates))
		}

		key := snapshot.WeekStatsKey(seasonYear, r.Week)
		doc := snapshot.WeekStats{Season: seasonYear, Week: r.Week, GeneratedAt: generated, Players: set.Records}
		if err := s.put(ctx, snapshot.DatasetWeekStats, key, doc); err != nil {
			return report, err
		}
		report.Keys = append(report.Keys, key)
		if r.Week == week {
			report.WeekRows = len(set.Records)
		}
	}
	metrics.UpdateDatasetRows(snapshot.DatasetWeekStats, report.WeekRows)

	seasonRows := season.Aggregate(sets)
	key := snapshot.SeasonToDateKey(seasonYear)
	if err := s.put(ctx, snapshot.DatasetSeasonToDate, key, snapshot.SeasonToDate{
		Season: seasonYear, GeneratedAt: generated, Players: seasonRows,
	}); err != nil {
		return report, err
	}
	report.SeasonRows = len(seasonRows)
	report.Keys = append(report.Keys, key)
	metrics.UpdateDatasetRows(snapshot.DatasetSeasonToDate, len(seasonRows))

	var current model.WeekSet
	if len(sets) > 0 {
		current = sets[len(sets)-1]
	}
	usageRows := usage.Week(current)
	key = snapshot.UsageKey(seasonYear, week)
	if err := s.put(ctx, snapshot.DatasetUsage, key, snapshot.Usage{
		Season: seasonYear, Week: week, GeneratedAt: generated, Players: usageRows,
	}); err != nil {
		return report, err
	}
	report.UsageRows = len(usageRows)
	report.Keys = append(report.Keys, key)
	metrics.UpdateDatasetRows(snapshot.DatasetUsage, len(usageRows))

	sosRows := sos.Aggregate(sets)
	key = snapshot.SOSKey(seasonYear, week)
	if err := s.put(ctx, snapshot.DatasetSOS, key, snapshot.SOS{
		Season: seasonYear, ThroughWeek: week, GeneratedAt: generated, DefenseVsPos: sosRows,
	}); err != nil {
		return report, err
	}
	report.SOSRows = len(sosRows)
	report.Keys = append(report.Keys, key)
	metrics.UpdateDatasetRows(snapshot.DatasetSOS, len(sosRows))

	log.Info(ctx, "stats built",
		logger.Int("season", seasonYear),
		logger.Int("week", week),
		logger.Int("season_rows", report.SeasonRows),
		logger.Int("failed_weeks", len(report.FailedWeeks)))
	return report, nil
}

// leagueScoring returns the league's scoring settings, or nil so the
// engine falls back to defaults.
func (s *Service) leagueScoring(ctx context.Context, log logger.Logger) map[string]float64 {
	if s.leagueID == "" {
		return nil
	}
	lg, err := s.source.League(ctx)
	if err != nil {
		metrics.RecordSourceFallback("league")
		log.Warn(ctx, "league settings unavailable, using default scoring", logger.Error(err))
		return nil
	}
	return lg.ScoringSettings
}

func (s *Service) buildValues(ctx context.Context, log logger.Logger, seasonYear int, date time.Time) (ValuesReport, error) {
	key := snapshot.ValuesKey(seasonYear, date)
	report := ValuesReport{Season: seasonYear, Date: date.UTC().Format("2006-01-02"), Key: key}
	if seasonYear <= 0 {
		return report, ErrInvalidSeason
	}

	var rows []model.SeasonRow
	raw, err := s.store.Get(ctx, snapshot.SeasonToDateKey(seasonYear))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Warn(ctx, "season-to-date table missing, writing empty values", logger.Int("season", seasonYear))
	case err != nil:
		return report, fmt.Errorf("read season-to-date: %w", err)
	default:
		var doc snapshot.SeasonToDate
		if err := snapshot.Decode(raw, &doc); err != nil {
			return report, fmt.Errorf("decode season-to-date: %w", err)
		}
		rows = doc.Players
	}

	table := value.Table(rows)
	if err := s.put(ctx, snapshot.DatasetValues, key, snapshot.Values{
		Season: seasonYear, GeneratedAt: snapshot.Timestamp(s.now()), Values: table,
	}); err != nil {
		return report, err
	}
	report.Rows = len(table)
	metrics.UpdateDatasetRows(snapshot.DatasetValues, len(table))
	log.Info(ctx, "values built", logger.String("key", key), logger.Int("rows", len(table)))
	return report, nil
}

func (s *Service) publish(ctx context.Context, log logger.Logger, seasonYear, week int) (PublishReport, error) {
	report := PublishReport{Season: seasonYear, Week: week, Keys: []string{}}
	if err := validate(seasonYear, week); err != nil {
		return report, err
	}
	if s.leagueID == "" {
		return report, ErrNoLeague
	}

	catalog := s.catalog.Catalog(ctx)
	users := fallback(ctx, log, "users", func() ([]model.User, error) { return s.source.Users(ctx) })
	rosters := fallback(ctx, log, "rosters", func() ([]model.Roster, error) { return s.source.Rosters(ctx) })
	matchups := fallback(ctx, log, "matchups", func() ([]model.Matchup, error) { return s.source.Matchups(ctx, week) })
	moves := fallback(ctx, log, "transactions", func() ([]model.Transaction, error) { return s.source.Transactions(ctx, week) })
	trending := s.source.Trending(ctx, s.trendingLookback, s.trendingLimit)

	now := s.now()
	generated := snapshot.Timestamp(now)
	views, rostered := league.Rosters(rosters, users, catalog)
	available := league.Available(catalog, rostered)
	injuries := league.Injuries(catalog, rostered)
	weekCopy := week

	docs := []struct {
		dataset string
		key     string
		doc     any
		rows    int
	}{
		{snapshot.DatasetRosters, snapshot.RostersKey(seasonYear), snapshot.Rosters{
			Season: seasonYear, GeneratedAt: generated, LeagueID: s.leagueID, Rosters: views,
		}, len(views)},
		{snapshot.DatasetStandings, snapshot.StandingsKey(seasonYear), snapshot.Standings{
			Season: seasonYear, GeneratedAt: generated, LeagueID: s.leagueID, Standings: league.Standings(views),
		}, len(views)},
		{snapshot.DatasetMatchups, snapshot.MatchupsKey(seasonYear, week), snapshot.Matchups{
			Season: seasonYear, Week: week, GeneratedAt: generated, LeagueID: s.leagueID,
			Games: league.Games(matchups, rosters, users),
		}, len(matchups)},
		{snapshot.DatasetTransactions, snapshot.TransactionsKey(seasonYear, week), snapshot.Transactions{
			Season: seasonYear, Week: &weekCopy, GeneratedAt: generated, LeagueID: s.leagueID, Moves: moves,
		}, len(moves)},
		{snapshot.DatasetTrending, snapshot.TrendingKey(now), snapshot.Trending{
			GeneratedAt: generated, LookbackHours: s.trendingLookback, Limit: s.trendingLimit,
			Adds: trending.Adds, Drops: trending.Drops,
		}, len(trending.Adds) + len(trending.Drops)},
		{snapshot.DatasetAvailable, snapshot.AvailableKey(seasonYear, week), snapshot.Available{
			Season: seasonYear, Week: week, GeneratedAt: generated, LeagueID: s.leagueID,
			Count: len(available), Players: available,
		}, len(available)},
		{snapshot.DatasetInjuries, snapshot.InjuriesKey(seasonYear, week), snapshot.Injuries{
			Season: seasonYear, Week: week, GeneratedAt: generated, LeagueID: s.leagueID, Players: injuries,
		}, len(injuries)},
		{snapshot.DatasetMeta, snapshot.MetaKey, snapshot.Meta{
			Season: seasonYear, LatestWeek: week, UpdatedAt: generated, LeagueID: s.leagueID,
			Datasets: snapshot.GlueDatasets,
		}, 1},
	}
	for _, d := range docs {
		if err := s.put(ctx, d.dataset, d.key, d.doc); err != nil {
			return report, err
		}
		metrics.UpdateDatasetRows(d.dataset, d.rows)
		report.Keys = append(report.Keys, d.key)
	}

	report.Rosters = len(views)
	report.Available = len(available)
	report.Injuries = len(injuries)
	log.Info(ctx, "league published",
		logger.String("league_id", s.leagueID),
		logger.Int("week", week),
		logger.Int("rosters", report.Rosters))
	return report, nil
}

func (s *Service) transactionHistory(ctx context.Context, log logger.Logger, seasonYear, maxWeek int) (HistoryReport, error) {
	report := HistoryReport{Season: seasonYear, FailedWeeks: []int{}, Keys: []string{}}
	if err := validate(seasonYear, maxWeek); err != nil {
		return report, err
	}
	if s.leagueID == "" {
		return report, ErrNoLeague
	}

	generated := snapshot.Timestamp(s.now())
	all := []model.Transaction{}
	for w := 1; w <= maxWeek; w++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		moves, err := s.source.Transactions(ctx, w)
		if err != nil {
			report.FailedWeeks = append(report.FailedWeeks, w)
			metrics.RecordSourceFallback("transactions")
			log.Warn(ctx, "transactions unavailable, skipping week", logger.Int("week", w), logger.Error(err))
			continue
		}
		week := w
		key := snapshot.TransactionsKey(seasonYear, w)
		if err := s.put(ctx, snapshot.DatasetTransactions, key, snapshot.Transactions{
			Season: seasonYear, Week: &week, GeneratedAt: generated, LeagueID: s.leagueID, Moves: moves,
		}); err != nil {
			return report, err
		}
		report.Keys = append(report.Keys, key)
		report.Weeks++
		all = append(all, league.TaggedMoves(w, moves)...)
	}

	key := snapshot.SeasonTransactionsKey(seasonYear)
	if err := s.put(ctx, snapshot.DatasetTransactions, key, snapshot.Transactions{
		Season: seasonYear, GeneratedAt: generated, LeagueID: s.leagueID, Moves: all,
	}); err != nil {
		return report, err
	}
	report.Keys = append(report.Keys, key)
	report.Moves = len(all)
	log.Info(ctx, "transaction history built", logger.Int("weeks", report.Weeks), logger.Int("moves", report.Moves))
	return report, nil
}

// fallback converts a source failure into an empty collection.
func fallback[T any](ctx context.Context, log logger.Logger, endpoint string, fn func() ([]T, error)) []T {
	out, err := fn()
	if err != nil {
		metrics.RecordSourceFallback(endpoint)
		log.Warn(ctx, "source unavailable, using empty result", logger.String("endpoint", endpoint), logger.Error(err))
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
