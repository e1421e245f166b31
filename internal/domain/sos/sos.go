// Package sos measures how many fantasy points each defense allows by position.
package sos

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/round"
)

const ratePrecision = 2

type key struct {
	def string
	pos string
}

type tally struct {
	points float64
	games  int
}

// Aggregate averages points scored against each (defense, position) pair
// across weeks. Records missing an opponent or position are skipped. Rows
// are sorted by position, then points allowed desc, then defense.
func Aggregate(weeks []model.WeekSet) []model.SOSRow {
	acc := make(map[key]*tally)
	for _, set := range weeks {
		for _, r := range set.Records {
			if r.Opp == "" || r.Pos == "" {
				continue
			}
			k := key{def: r.Opp, pos: r.Pos}
			t, ok := acc[k]
			if !ok {
				t = &tally{}
				acc[k] = t
			}
			t.points += r.FantasyPts
			t.games++
		}
	}

	rows := make([]model.SOSRow, 0, len(acc))
	for k, t := range acc {
		rows = append(rows, model.SOSRow{
			DefTeam:      k.def,
			Pos:          k.pos,
			PtsAllowedPG: round.To(t.points/float64(max(1, t.games)), ratePrecision),
			Games:        t.games,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if a.PtsAllowedPG != b.PtsAllowedPG {
			return a.PtsAllowedPG > b.PtsAllowedPG
		}
		return a.DefTeam < b.DefTeam
	})
	return rows
}
