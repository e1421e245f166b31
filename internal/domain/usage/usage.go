// Package usage computes each player's share of team targets and carries.
package usage

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/round"
)

const sharePrecision = 1

type teamTotals struct {
	targets float64
	rushAtt float64
}

// Week computes target and carry shares for one week. Records with no team
// are excluded. A team whose total is zero reports a share of 0 for every
// player. Rows are sorted by team, then target share desc, then player id.
func Week(set model.WeekSet) []model.UsageRow {
	teams := make(map[string]*teamTotals)
	for _, r := range set.Records {
		if r.Team == "" {
			continue
		}
		t, ok := teams[r.Team]
		if !ok {
			t = &teamTotals{}
			teams[r.Team] = t
		}
		t.targets += r.Targets
		t.rushAtt += r.RushAtt
	}

	rows := make([]model.UsageRow, 0, len(set.Records))
	for _, r := range set.Records {
		t, ok := teams[r.Team]
		if !ok {
			continue
		}
		rows = append(rows, model.UsageRow{
			PlayerID:    r.PlayerID,
			Name:        r.Name,
			Team:        r.Team,
			Pos:         r.Pos,
			Targets:     r.Targets,
			RushAtt:     r.RushAtt,
			TargetShare: share(r.Targets, t.targets),
			CarryShare:  share(r.RushAtt, t.rushAtt),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.TargetShare != b.TargetShare {
			return a.TargetShare > b.TargetShare
		}
		return a.PlayerID < b.PlayerID
	})
	return rows
}

// share returns part as a percentage of total.
func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return round.To(100*part/total, sharePrecision)
}
