package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/repository"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/snapshot"
	"github.com/okian/gridiron/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errDown = errors.New("source down")

type fakeSource struct {
	mu        sync.Mutex
	weeks     map[int][]model.RawStats
	failWeeks map[int]bool
	calls     map[int]int
	gate      chan struct{}

	scoring     map[string]float64
	leagueErr   error
	failMoves   map[int]bool
	usersErr    error
	leagueCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		weeks: map[int][]model.RawStats{
			1: {
				{"player_id": "p1", "opp": "DAL", "rec": 5, "rec_yd": 50, "tgt": 7},
				{"player_id": "p2", "opp": "DAL", "rush_yd": 100, "rush_td": 1, "rush_att": 20, "tgt": 3},
			},
			3: {
				{"player_id": "p1", "opp": "NYG", "rec": 6, "rec_yd": 80, "tgt": 9},
				{"player_id": "p2", "opp": "NYG", "rush_yd": 50, "rush_att": 10, "tgt": 1},
				{"rec": 3},
			},
		},
		failWeeks: map[int]bool{2: true},
		failMoves: map[int]bool{},
		calls:     map[int]int{},
	}
}

func (f *fakeSource) WeekStats(ctx context.Context, _ int, week int) ([]model.RawStats, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[week]++
	if f.failWeeks[week] {
		return nil, errDown
	}
	return f.weeks[week], nil
}

func (f *fakeSource) Players(context.Context) (model.Catalog, error) { return nil, errDown }

func (f *fakeSource) League(context.Context) (model.League, error) {
	f.mu.Lock()
	f.leagueCalls++
	f.mu.Unlock()
	if f.leagueErr != nil {
		return model.League{}, f.leagueErr
	}
	return model.League{LeagueID: "L1", ScoringSettings: f.scoring}, nil
}

func (f *fakeSource) Users(context.Context) ([]model.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return []model.User{{UserID: "u1", DisplayName: "Sam", TeamName: "Hawks"}}, nil
}

func (f *fakeSource) Rosters(context.Context) ([]model.Roster, error) {
	return []model.Roster{{RosterID: 1, OwnerID: "u1", Players: []string{"p1", "p2"}, Starters: []string{"p1"}, Wins: 3}}, nil
}

func (f *fakeSource) Matchups(context.Context, int) ([]model.Matchup, error) {
	return []model.Matchup{{MatchupID: 1, RosterID: 1, Starters: []string{"p1"}, Points: 101.5}}, nil
}

func (f *fakeSource) Transactions(_ context.Context, week int) ([]model.Transaction, error) {
	if f.failMoves[week] {
		return nil, errDown
	}
	return []model.Transaction{{"transaction_id": "t" + string(rune('0'+week)), "type": "waiver"}}, nil
}

func (f *fakeSource) Trending(context.Context, int, int) model.Trending {
	return model.Trending{Adds: []map[string]any{{"player_id": "p3", "count": 12}}, Drops: []map[string]any{}}
}

type staticCatalog model.Catalog

func (c staticCatalog) Catalog(context.Context) model.Catalog { return model.Catalog(c) }

var catalog = staticCatalog{
	"p1": {PlayerID: "p1", FullName: "Alpha", Team: "KC", Position: "WR", InjuryStatus: "Questionable"},
	"p2": {PlayerID: "p2", FullName: "Bravo", Team: "KC", Position: "RB"},
	"p3": {PlayerID: "p3", FullName: "Charlie", Team: "SF", Position: "TE"},
}

var fixedNow = time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)

func newService(src *fakeSource, store repository.Store, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithStore(store),
		service.WithSource(src),
		service.WithCatalog(catalog),
		service.WithWorkerCount(2),
		service.WithClock(func() time.Time { return fixedNow }),
	}
	svc, err := service.New(append(base, opts...)...)
	So(err, ShouldBeNil)
	return svc
}

func load[T any](ctx context.Context, store repository.Store, key string) T {
	var doc T
	raw, err := store.Get(ctx, key)
	So(err, ShouldBeNil)
	So(snapshot.Decode(raw, &doc), ShouldBeNil)
	return doc
}

func TestService_New(t *testing.T) {
	Convey("Given no store or source", t, func() {
		_, err := service.New()
		So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
	})

	Convey("Given a store and a source", t, func() {
		svc, err := service.New(
			service.WithStore(repository.NewMemoryStore()),
			service.WithSource(newFakeSource()),
			service.WithLeagueID("L1"),
			service.WithWorkerCount(3),
		)
		So(err, ShouldBeNil)

		Convey("Then stats reflect the configuration", func() {
			stats := svc.GetStats()
			So(stats["leagueID"], ShouldEqual, "L1")
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["runs"], ShouldEqual, 0)
		})
	})
}

func TestService_BuildStats(t *testing.T) {
	Convey("Given three weeks where week two is unavailable", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		store := repository.NewMemoryStore()
		svc := newService(src, store)

		report, err := svc.BuildStats(ctx, 2025, 3)
		So(err, ShouldBeNil)

		Convey("Then every week is fetched exactly once", func() {
			So(src.calls, ShouldResemble, map[int]int{1: 1, 2: 1, 3: 1})
		})

		Convey("Then the failed week is reported and written empty", func() {
			So(report.FailedWeeks, ShouldResemble, []int{2})
			doc := load[snapshot.WeekStats](ctx, store, snapshot.WeekStatsKey(2025, 2))
			So(doc.Players, ShouldBeEmpty)
		})

		Convey("Then week rows are scored with default weights", func() {
			doc := load[snapshot.WeekStats](ctx, store, snapshot.WeekStatsKey(2025, 1))
			So(doc.GeneratedAt, ShouldEqual, "2025-10-14T09:30:00Z")
			So(doc.Players, ShouldHaveLength, 2)
			So(doc.Players[0].PlayerID, ShouldEqual, "p1")
			So(doc.Players[0].FantasyPts, ShouldEqual, 10.0)
			So(doc.Players[1].FantasyPts, ShouldEqual, 16.0)
			So(report.WeekRows, ShouldEqual, 2)
			So(report.Dropped, ShouldEqual, 1)
		})

		Convey("Then the season table averages over games played", func() {
			doc := load[snapshot.SeasonToDate](ctx, store, snapshot.SeasonToDateKey(2025))
			So(doc.Players, ShouldHaveLength, 2)
			So(doc.Players[0].PlayerID, ShouldEqual, "p1")
			So(doc.Players[0].Games, ShouldEqual, 2)
			So(doc.Players[0].PPG, ShouldEqual, 12.0)
			So(doc.Players[0].TgtPG, ShouldEqual, 8.0)
			So(doc.Players[1].PPG, ShouldEqual, 10.5)
			So(doc.Players[1].RushAttPG, ShouldEqual, 15.0)
		})

		Convey("Then usage covers the current week", func() {
			doc := load[snapshot.Usage](ctx, store, snapshot.UsageKey(2025, 3))
			So(doc.Players, ShouldHaveLength, 2)
			So(doc.Players[0].PlayerID, ShouldEqual, "p1")
			So(doc.Players[0].TargetShare, ShouldEqual, 90.0)
			So(doc.Players[1].CarryShare, ShouldEqual, 100.0)
		})

		Convey("Then defense-vs-position spans every week", func() {
			doc := load[snapshot.SOS](ctx, store, snapshot.SOSKey(2025, 3))
			So(doc.ThroughWeek, ShouldEqual, 3)
			So(doc.DefenseVsPos, ShouldResemble, []model.SOSRow{
				{DefTeam: "DAL", Pos: "RB", PtsAllowedPG: 16, Games: 1},
				{DefTeam: "NYG", Pos: "RB", PtsAllowedPG: 5, Games: 1},
				{DefTeam: "NYG", Pos: "WR", PtsAllowedPG: 14, Games: 1},
				{DefTeam: "DAL", Pos: "WR", PtsAllowedPG: 10, Games: 1},
			})
		})

		Convey("Then rebuilding produces identical documents", func() {
			first, _ := store.Get(ctx, snapshot.SeasonToDateKey(2025))
			_, err := svc.BuildStats(ctx, 2025, 3)
			So(err, ShouldBeNil)
			second, _ := store.Get(ctx, snapshot.SeasonToDateKey(2025))
			So(string(second), ShouldEqual, string(first))
		})
	})

	Convey("Given a league with half-point receptions", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.scoring = map[string]float64{"rec": 0.5}
		store := repository.NewMemoryStore()
		svc := newService(src, store, service.WithLeagueID("L1"))

		_, err := svc.BuildStats(ctx, 2025, 1)
		So(err, ShouldBeNil)
		doc := load[snapshot.WeekStats](ctx, store, snapshot.WeekStatsKey(2025, 1))
		So(doc.Players[0].FantasyPts, ShouldEqual, 7.5)

		Convey("And overrides apply over the league", func() {
			svc := newService(src, store, service.WithLeagueID("L1"),
				service.WithScoringOverrides(map[string]float64{"rec": 2}))
			_, err := svc.BuildStats(ctx, 2025, 1)
			So(err, ShouldBeNil)
			doc := load[snapshot.WeekStats](ctx, store, snapshot.WeekStatsKey(2025, 1))
			So(doc.Players[0].FantasyPts, ShouldEqual, 15.0)
		})
	})

	Convey("Given league settings are unavailable", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.leagueErr = errDown
		store := repository.NewMemoryStore()
		svc := newService(src, store, service.WithLeagueID("L1"))

		_, err := svc.BuildStats(ctx, 2025, 1)
		So(err, ShouldBeNil)
		doc := load[snapshot.WeekStats](ctx, store, snapshot.WeekStatsKey(2025, 1))
		So(doc.Players[0].FantasyPts, ShouldEqual, 10.0)
	})

	Convey("Given invalid arguments", t, func() {
		svc := newService(newFakeSource(), repository.NewMemoryStore())
		_, err := svc.BuildStats(context.Background(), 2025, 0)
		So(errors.Is(err, service.ErrInvalidWeek), ShouldBeTrue)
		_, err = svc.BuildStats(context.Background(), 0, 1)
		So(errors.Is(err, service.ErrInvalidSeason), ShouldBeTrue)
	})
}

func TestService_BuildValues(t *testing.T) {
	Convey("Given a stored season-to-date table", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(newFakeSource(), store)
		_, err := svc.BuildStats(ctx, 2025, 3)
		So(err, ShouldBeNil)

		report, err := svc.BuildValues(ctx, 2025, fixedNow)
		So(err, ShouldBeNil)

		Convey("Then a dated value table is written", func() {
			So(report.Key, ShouldEqual, "value/2025/2025-10-14")
			So(report.Rows, ShouldEqual, 2)
			doc := load[snapshot.Values](ctx, store, report.Key)
			So(doc.Values[0].PlayerID, ShouldEqual, "p2")
			So(doc.Values[0].Value, ShouldEqual, 76.5)
			So(doc.Values[0].OverallRank, ShouldEqual, 1)
			So(doc.Values[1].Value, ShouldEqual, 66.0)
			So(doc.Values[1].PosRank, ShouldEqual, 1)
		})
	})

	Convey("Given no season-to-date table", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(newFakeSource(), store)

		report, err := svc.BuildValues(ctx, 2024, fixedNow)

		Convey("Then an empty table is written without error", func() {
			So(err, ShouldBeNil)
			So(report.Rows, ShouldEqual, 0)
			doc := load[snapshot.Values](ctx, store, report.Key)
			So(doc.Values, ShouldBeEmpty)
		})
	})
}

func TestService_Publish(t *testing.T) {
	Convey("Given no league id", t, func() {
		svc := newService(newFakeSource(), repository.NewMemoryStore())
		_, err := svc.Publish(context.Background(), 2025, 3)
		So(errors.Is(err, service.ErrNoLeague), ShouldBeTrue)
	})

	Convey("Given a configured league", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(newFakeSource(), store, service.WithLeagueID("L1"))

		report, err := svc.Publish(ctx, 2025, 3)
		So(err, ShouldBeNil)

		Convey("Then every glue dataset and meta are written", func() {
			So(report.Keys, ShouldHaveLength, 8)
			So(report.Keys, ShouldContain, "trending/2025-10-14")
			So(report.Keys, ShouldContain, snapshot.MetaKey)
		})

		Convey("Then rosters are decorated with owners", func() {
			doc := load[snapshot.Rosters](ctx, store, snapshot.RostersKey(2025))
			So(doc.Rosters, ShouldHaveLength, 1)
			So(doc.Rosters[0].TeamName, ShouldEqual, "Hawks")
			So(doc.Rosters[0].Starters[0].FullName, ShouldEqual, "Alpha")
		})

		Convey("Then free agents and injuries follow the rostered set", func() {
			So(report.Available, ShouldEqual, 1)
			avail := load[snapshot.Available](ctx, store, snapshot.AvailableKey(2025, 3))
			So(avail.Players[0].PlayerID, ShouldEqual, "p3")
			inj := load[snapshot.Injuries](ctx, store, snapshot.InjuriesKey(2025, 3))
			So(inj.Players, ShouldHaveLength, 1)
			So(inj.Players[0].PlayerID, ShouldEqual, "p1")
		})

		Convey("Then meta names the latest week", func() {
			meta := load[snapshot.Meta](ctx, store, snapshot.MetaKey)
			So(meta.LatestWeek, ShouldEqual, 3)
			So(meta.LeagueID, ShouldEqual, "L1")
			So(meta.Datasets, ShouldResemble, snapshot.GlueDatasets)
		})
	})

	Convey("Given users are unavailable", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.usersErr = errDown
		store := repository.NewMemoryStore()
		svc := newService(src, store, service.WithLeagueID("L1"))

		_, err := svc.Publish(ctx, 2025, 3)

		Convey("Then publishing still succeeds with blank owners", func() {
			So(err, ShouldBeNil)
			doc := load[snapshot.Rosters](ctx, store, snapshot.RostersKey(2025))
			So(doc.Rosters[0].TeamName, ShouldBeBlank)
		})
	})
}

func TestService_TransactionHistory(t *testing.T) {
	Convey("Given four weeks where week two fails", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.failMoves[2] = true
		store := repository.NewMemoryStore()
		svc := newService(src, store, service.WithLeagueID("L1"))

		report, err := svc.TransactionHistory(ctx, 2025, 4)
		So(err, ShouldBeNil)

		Convey("Then the failed week is skipped", func() {
			So(report.FailedWeeks, ShouldResemble, []int{2})
			So(report.Weeks, ShouldEqual, 3)
			_, err := store.Get(ctx, snapshot.TransactionsKey(2025, 2))
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then the season history tags each move with its week", func() {
			doc := load[snapshot.Transactions](ctx, store, snapshot.SeasonTransactionsKey(2025))
			So(doc.Week, ShouldBeNil)
			So(doc.Moves, ShouldHaveLength, 3)
			So(doc.Moves[0]["week"], ShouldEqual, 1.0)
			So(doc.Moves[2]["week"], ShouldEqual, 4.0)
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given a full run without a league", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(newFakeSource(), store)

		report, err := svc.Run(ctx, 2025, 3, fixedNow)

		Convey("Then stats and values are built and publish is skipped", func() {
			So(err, ShouldBeNil)
			So(report.Status, ShouldEqual, service.StatusSucceeded)
			So(report.RunID, ShouldNotBeBlank)
			So(report.Stats, ShouldNotBeNil)
			So(report.Values, ShouldNotBeNil)
			So(report.Publish, ShouldBeNil)
		})

		Convey("Then the last run is recorded", func() {
			last, ok := svc.LastRun()
			So(ok, ShouldBeTrue)
			So(last.RunID, ShouldEqual, report.RunID)
			So(svc.GetStats()["runs"], ShouldEqual, 1)
		})
	})

	Convey("Given an invalid week", t, func() {
		svc := newService(newFakeSource(), repository.NewMemoryStore())
		report, err := svc.Run(context.Background(), 2025, 0, fixedNow)
		So(errors.Is(err, service.ErrInvalidWeek), ShouldBeTrue)
		So(report.Status, ShouldEqual, service.StatusFailed)
		So(report.Error, ShouldStartWith, "stats:")
	})
}

func TestService_StartRun(t *testing.T) {
	Convey("Given a run blocked on the source", t, func() {
		src := newFakeSource()
		src.gate = make(chan struct{})
		svc := newService(src, repository.NewMemoryStore())

		id, err := svc.StartRun(2025, 3, fixedNow)
		So(err, ShouldBeNil)
		So(id, ShouldNotBeBlank)

		Convey("Then a second run is rejected until the first finishes", func() {
			_, err := svc.StartRun(2025, 3, fixedNow)
			So(errors.Is(err, service.ErrRunInProgress), ShouldBeTrue)

			close(src.gate)
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if last, ok := svc.LastRun(); ok && last.Status != service.StatusRunning {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			last, ok := svc.LastRun()
			So(ok, ShouldBeTrue)
			So(last.RunID, ShouldEqual, id)
			So(last.Status, ShouldEqual, service.StatusSucceeded)
		})
	})
}

func TestService_Shutdown(t *testing.T) {
	Convey("Given a background run blocked on the source", t, func() {
		src := newFakeSource()
		src.gate = make(chan struct{})
		store := repository.NewMemoryStore()
		svc := newService(src, store)

		id, err := svc.StartRun(2025, 3, fixedNow)
		So(err, ShouldBeNil)

		Convey("When the service shuts down", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			So(svc.Shutdown(ctx), ShouldBeNil)

			Convey("Then the run is cancelled and recorded as failed", func() {
				last, ok := svc.LastRun()
				So(ok, ShouldBeTrue)
				So(last.RunID, ShouldEqual, id)
				So(last.Status, ShouldEqual, service.StatusFailed)
				So(last.Error, ShouldContainSubstring, context.Canceled.Error())

				keys, err := store.Keys(context.Background(), "")
				So(err, ShouldBeNil)
				So(keys, ShouldBeEmpty)
			})

			Convey("Then new background runs are rejected", func() {
				_, err := svc.StartRun(2025, 3, fixedNow)
				So(errors.Is(err, service.ErrServiceClosed), ShouldBeTrue)
			})
		})
	})

	Convey("Given an idle service", t, func() {
		svc := newService(newFakeSource(), repository.NewMemoryStore())
		So(svc.Shutdown(context.Background()), ShouldBeNil)
	})
}

func TestService_Snapshots(t *testing.T) {
	Convey("Given built stats", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(newFakeSource(), store)
		_, err := svc.BuildStats(ctx, 2025, 2)
		So(err, ShouldBeNil)

		keys, err := svc.Snapshots(ctx, "player_stats/2025/")
		So(err, ShouldBeNil)
		So(keys, ShouldContain, "player_stats/2025/week_01")
		So(keys, ShouldContain, "player_stats/2025/season_to_date")

		doc, err := svc.Snapshot(ctx, "usage/2025/week_02")
		So(err, ShouldBeNil)
		So(string(doc), ShouldContainSubstring, `"week": 2`)

		_, err = svc.Snapshot(ctx, "missing")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}
