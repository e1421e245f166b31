package alias_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/gridiron/internal/domain/alias"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	Convey("Given rows with alternate spellings", t, func() {
		Convey("When only the secondary alias is present", func() {
			v, ok := alias.Number(map[string]any{"pass_yds": 250.0}, alias.PassYd)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 250.0)
		})

		Convey("When both aliases are present the declared first wins", func() {
			v, ok := alias.Number(map[string]any{"pass_yd": 10, "pass_yds": 300}, alias.PassYd)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 10.0)
		})

		Convey("When the first alias is not numeric the next one is used", func() {
			v, ok := alias.Number(map[string]any{"fum_lost": map[string]any{}, "fumbles_lost": "2"}, alias.FumblesLost)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 2.0)
		})

		Convey("When the kind is absent", func() {
			v, ok := alias.Number(map[string]any{"rush_td": 1}, alias.RecTD)
			So(ok, ShouldBeFalse)
			So(v, ShouldEqual, 0.0)
		})

		Convey("When values are json numbers or padded strings", func() {
			v, ok := alias.Number(map[string]any{"tgt": json.Number("7")}, alias.Targets)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 7.0)

			v, ok = alias.Number(map[string]any{"rushing_att": " 12 "}, alias.RushAtt)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 12.0)
		})
	})
}

func TestToFloat(t *testing.T) {
	Convey("Given non-numeric values", t, func() {
		for _, v := range []any{nil, true, "abc", []any{1}, math.NaN(), math.Inf(1), "NaN"} {
			_, ok := alias.ToFloat(v)
			So(ok, ShouldBeFalse)
		}
		So(alias.IsNumeric("3"), ShouldBeFalse)
		So(alias.IsNumeric(3), ShouldBeTrue)
	})
}

func TestText(t *testing.T) {
	Convey("Given identity keys", t, func() {
		So(alias.Text(map[string]any{"playerId": 4046}, alias.PlayerID), ShouldEqual, "4046")
		So(alias.Text(map[string]any{"player_id": "", "pid": json.Number("96")}, alias.PlayerID), ShouldEqual, "96")
		So(alias.Text(map[string]any{"id": 1.0e7}, alias.PlayerID), ShouldEqual, "10000000")
		So(alias.Text(map[string]any{"team": nil}, alias.Team), ShouldEqual, "")
	})
}

func TestTable(t *testing.T) {
	Convey("Given the alias table", t, func() {
		So(alias.ScoringKinds, ShouldHaveLength, 10)
		for _, k := range alias.ScoringKinds {
			keys := alias.Keys(k)
			So(keys, ShouldNotBeEmpty)
		}
		So(alias.IsAlias("rec_tgt"), ShouldBeTrue)
		So(alias.IsAlias("gp"), ShouldBeFalse)

		v, ok := alias.Float(map[string]float64{"fumbles_lost": -2}, alias.FumblesLost)
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, -2.0)
	})
}
