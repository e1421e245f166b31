// Package value turns the season-to-date table into ranked trade values.
package value

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/round"
)

// Blend coefficients. The score is a fixed linear weighting, not a fitted model.
const (
	baseline     = 50.0
	zWeight      = 15.0
	targetWeight = 2.0
	carryWeight  = 1.5

	valuePrecision = 1
	zPrecision     = 3
)

// pool summarizes the points-per-game distribution of one position.
type pool struct {
	mean float64
	sd   float64
}

// Z returns how many standard deviations ppg sits from the pool mean.
// A zero or undefined deviation is treated as 1.
func (p pool) Z(ppg float64) float64 {
	return (ppg - p.mean) / p.sd
}

func newPool(ppg []float64) pool {
	if len(ppg) == 0 {
		return pool{sd: 1}
	}
	mean := stat.Mean(ppg, nil)
	sd := 0.0
	if len(ppg) > 1 {
		sd = stat.StdDev(ppg, nil)
	}
	if sd == 0 || math.IsNaN(sd) {
		sd = 1
	}
	return pool{mean: mean, sd: sd}
}

// ZScore reports the z-score of ppg within the given position sample.
// An empty sample yields 0.
func ZScore(sample []float64, ppg float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	return newPool(sample).Z(ppg)
}

// Table ranks every season row by trade value. overall_rank orders all rows
// by value desc, position asc, name asc, player id asc; pos_rank applies the
// same ordering within each position.
func Table(rows []model.SeasonRow) []model.ValueRow {
	samples := make(map[string][]float64)
	for _, r := range rows {
		samples[r.Pos] = append(samples[r.Pos], r.PPG)
	}
	pools := make(map[string]pool, len(samples))
	for pos, s := range samples {
		pools[pos] = newPool(s)
	}

	out := make([]model.ValueRow, 0, len(rows))
	for _, r := range rows {
		z := pools[r.Pos].Z(r.PPG)
		score := baseline + zWeight*z + targetWeight*r.TgtPG + carryWeight*r.RushAttPG
		out = append(out, model.ValueRow{
			PlayerID: r.PlayerID,
			Name:     r.Name,
			Pos:      r.Pos,
			PPG:      r.PPG,
			ZPPG:     round.To(z, zPrecision),
			Value:    round.To(score, valuePrecision),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})

	byPos := make(map[string]int)
	for i := range out {
		out[i].OverallRank = i + 1
		byPos[out[i].Pos]++
		out[i].PosRank = byPos[out[i].Pos]
	}
	return out
}
