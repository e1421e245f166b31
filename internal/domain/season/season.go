// Package season folds weekly canonical records into season-to-date rows.
package season

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/round"
)

const ratePrecision = 2

type totals struct {
	name    string
	pos     string
	games   int
	points  float64
	targets float64
	rushAtt float64
}

// Aggregate builds one row per player across weeks. Week order does not
// matter except for name and position, where the first non-empty value
// seen wins. Rows are sorted by ppg desc, name asc, player id asc.
func Aggregate(weeks []model.WeekSet) []model.SeasonRow {
	acc := make(map[string]*totals)
	for _, set := range weeks {
		for _, r := range set.Records {
			t, ok := acc[r.PlayerID]
			if !ok {
				t = &totals{}
				acc[r.PlayerID] = t
			}
			t.games++
			t.points += r.FantasyPts
			t.targets += r.Targets
			t.rushAtt += r.RushAtt
			if t.name == "" {
				t.name = r.Name
			}
			if t.pos == "" {
				t.pos = r.Pos
			}
		}
	}

	rows := make([]model.SeasonRow, 0, len(acc))
	for id, t := range acc {
		g := float64(max(1, t.games))
		rows = append(rows, model.SeasonRow{
			PlayerID:  id,
			Name:      t.name,
			Pos:       t.pos,
			Games:     t.games,
			PPG:       round.To(t.points/g, ratePrecision),
			TgtPG:     round.To(t.targets/g, ratePrecision),
			RushAttPG: round.To(t.rushAtt/g, ratePrecision),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.PPG != b.PPG {
			return a.PPG > b.PPG
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	return rows
}
