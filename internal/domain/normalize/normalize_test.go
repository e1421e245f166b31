package normalize_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecord(t *testing.T) {
	catalog := model.Catalog{
		"4046": {PlayerID: "4046", FullName: "Patrick Mahomes", Team: "KC", Position: "QB"},
		"DAL":  {PlayerID: "DAL", FirstName: "Dallas", LastName: "Cowboys", Team: "DAL", Position: "DEF"},
	}

	Convey("Given a raw stat row with catalog metadata", t, func() {
		raw := model.RawStats{
			"player_id": 4046,
			"opp":       "LV",
			"pass_yds":  "301.5",
			"pass_td":   2,
			"tgt":       1,
			"rush_att":  4,
			"pts_ppr":   22.4,
			"note":      "questionable",
		}

		rec, ok := normalize.Record(raw, catalog)

		Convey("Then identity resolves and metadata fills in", func() {
			So(ok, ShouldBeTrue)
			So(rec.PlayerID, ShouldEqual, "4046")
			So(rec.Name, ShouldEqual, "Patrick Mahomes")
			So(rec.Team, ShouldEqual, "KC")
			So(rec.Pos, ShouldEqual, "QB")
			So(rec.Opp, ShouldEqual, "LV")
		})

		Convey("Then aliased stats land under canonical names", func() {
			So(rec.Stat("pass_yd"), ShouldEqual, 301.5)
			So(rec.Stat("pass_td"), ShouldEqual, 2.0)
			So(rec.Targets, ShouldEqual, 1.0)
			So(rec.RushAtt, ShouldEqual, 4.0)
			_, aliasKept := rec.Stats["pass_yds"]
			So(aliasKept, ShouldBeFalse)
		})

		Convey("Then absent scoring kinds default to zero", func() {
			v, present := rec.Stats["rec_td"]
			So(present, ShouldBeTrue)
			So(v, ShouldEqual, 0.0)
		})

		Convey("Then unknown numeric fields are preserved and text dropped", func() {
			So(rec.Stat("pts_ppr"), ShouldEqual, 22.4)
			_, hasNote := rec.Stats["note"]
			So(hasNote, ShouldBeFalse)
		})
	})

	Convey("Given a raw row that carries its own team and position", t, func() {
		raw := model.RawStats{"pid": "4046", "team": "SF", "pos": "wr"}
		rec, ok := normalize.Record(raw, catalog)
		So(ok, ShouldBeTrue)
		So(rec.Team, ShouldEqual, "SF")
		So(rec.Pos, ShouldEqual, "WR")
	})

	Convey("Given a raw position outside the known set", t, func() {
		cat := model.Catalog{"77": {PlayerID: "77", FullName: "Full Back", Team: "SF", Position: "RB"}}

		Convey("When the catalog has a valid position", func() {
			rec, ok := normalize.Record(model.RawStats{"player_id": "77", "pos": "FB"}, cat)
			So(ok, ShouldBeTrue)
			So(rec.Pos, ShouldEqual, "RB")
		})

		Convey("When the catalog has none either", func() {
			rec, ok := normalize.Record(model.RawStats{"player_id": "78", "pos": "FB"}, cat)
			So(ok, ShouldBeTrue)
			So(rec.Pos, ShouldBeBlank)
		})
	})

	Convey("Given a defense with split names", t, func() {
		rec, ok := normalize.Record(model.RawStats{"player_id": "DAL"}, catalog)
		So(ok, ShouldBeTrue)
		So(rec.Name, ShouldEqual, "Dallas Cowboys")
		So(rec.Pos, ShouldEqual, "DEF")
	})

	Convey("Given a row with no resolvable identity", t, func() {
		_, ok := normalize.Record(model.RawStats{"pass_yd": 200, "player_id": ""}, catalog)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a player missing from the catalog", t, func() {
		rec, ok := normalize.Record(model.RawStats{"player_id": "9999"}, nil)
		So(ok, ShouldBeTrue)
		So(rec.Name, ShouldBeBlank)
		So(rec.Team, ShouldBeBlank)
		So(rec.Pos, ShouldBeBlank)
	})
}

func TestWeek(t *testing.T) {
	Convey("Given a week of raw rows with duplicates and anonymous rows", t, func() {
		rows := []model.RawStats{
			{"player_id": "b", "rec": 3},
			{"player_id": "a", "rec": 5},
			{"rec": 9},
			{"player_id": "b", "rec": 7},
		}

		set, rep := normalize.Week(4, rows, nil)

		Convey("Then identities are unique, sorted and first-wins", func() {
			So(set.Week, ShouldEqual, 4)
			So(set.Records, ShouldHaveLength, 2)
			So(set.Records[0].PlayerID, ShouldEqual, "a")
			So(set.Records[1].PlayerID, ShouldEqual, "b")
			So(set.Records[1].Stat("rec"), ShouldEqual, 3.0)
		})

		Convey("Then the report counts what was dropped", func() {
			So(rep, ShouldResemble, normalize.Report{Input: 4, Kept: 2, NoIdentity: 1, Duplicates: 1})
		})
	})

	Convey("Given an empty week", t, func() {
		set, rep := normalize.Week(1, nil, nil)
		So(set.Records, ShouldBeEmpty)
		So(rep.Kept, ShouldEqual, 0)
	})
}

func TestPosition(t *testing.T) {
	Convey("Given position labels", t, func() {
		So(normalize.Position(" te "), ShouldEqual, "TE")
		So(normalize.Position("DST"), ShouldEqual, "DEF")
		So(normalize.Position("LB"), ShouldEqual, "")
		So(normalize.Position(""), ShouldEqual, "")
	})
}
