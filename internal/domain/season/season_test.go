package season_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id, name, pos string, pts, tgt, att float64) model.Record {
	return model.Record{PlayerID: id, Name: name, Pos: pos, FantasyPts: pts, Targets: tgt, RushAtt: att}
}

func TestAggregate(t *testing.T) {
	Convey("Given three weeks of records", t, func() {
		weeks := []model.WeekSet{
			{Week: 1, Records: []model.Record{
				rec("1", "", "", 10, 6, 0),
				rec("2", "Back", "RB", 15, 2, 18),
			}},
			{Week: 2, Records: []model.Record{
				rec("1", "Receiver", "WR", 20, 9, 1),
				rec("2", "Renamed", "WR", 9, 3, 14),
			}},
			{Week: 3, Records: []model.Record{
				rec("1", "Other", "TE", 12.5, 7, 0),
				rec("3", "Kicker", "K", 8, 0, 0),
			}},
		}

		rows := season.Aggregate(weeks)
		byID := map[string]model.SeasonRow{}
		for _, r := range rows {
			byID[r.PlayerID] = r
		}

		Convey("Then games equals the number of weeks a player appears", func() {
			So(byID["1"].Games, ShouldEqual, 3)
			So(byID["2"].Games, ShouldEqual, 2)
			So(byID["3"].Games, ShouldEqual, 1)
		})

		Convey("Then per-game rates divide totals by games", func() {
			So(byID["1"].PPG, ShouldEqual, 14.17)
			So(byID["1"].TgtPG, ShouldEqual, 7.33)
			So(byID["1"].RushAttPG, ShouldEqual, 0.33)
			So(byID["2"].PPG, ShouldEqual, 12.0)
			So(byID["2"].RushAttPG, ShouldEqual, 16.0)
			So(byID["3"].PPG, ShouldEqual, 8.0)
		})

		Convey("Then the first non-empty name and position win", func() {
			So(byID["1"].Name, ShouldEqual, "Receiver")
			So(byID["1"].Pos, ShouldEqual, "WR")
			So(byID["2"].Name, ShouldEqual, "Back")
			So(byID["2"].Pos, ShouldEqual, "RB")
		})

		Convey("Then rows are sorted by ppg descending", func() {
			So(rows[0].PlayerID, ShouldEqual, "1")
			So(rows[1].PlayerID, ShouldEqual, "2")
			So(rows[2].PlayerID, ShouldEqual, "3")
		})
	})

	Convey("Given players tied on ppg", t, func() {
		rows := season.Aggregate([]model.WeekSet{{Week: 1, Records: []model.Record{
			rec("9", "Zed", "WR", 10, 0, 0),
			rec("8", "Abe", "WR", 10, 0, 0),
			rec("7", "Abe", "WR", 10, 0, 0),
		}}})

		Convey("Then name then id break the tie", func() {
			So(rows[0].PlayerID, ShouldEqual, "7")
			So(rows[1].PlayerID, ShouldEqual, "8")
			So(rows[2].PlayerID, ShouldEqual, "9")
		})
	})

	Convey("Given no weeks", t, func() {
		So(season.Aggregate(nil), ShouldBeEmpty)
	})

	Convey("Given the same weeks in a different order", t, func() {
		a := []model.WeekSet{
			{Week: 1, Records: []model.Record{rec("1", "A", "QB", 20, 0, 3)}},
			{Week: 2, Records: []model.Record{rec("1", "A", "QB", 10, 0, 5)}},
		}
		b := []model.WeekSet{a[1], a[0]}
		So(season.Aggregate(a), ShouldResemble, season.Aggregate(b))
	})
}
