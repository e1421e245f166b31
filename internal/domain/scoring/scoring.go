// Package scoring converts canonical stat records into fantasy points.
package scoring

import (
	"github.com/okian/gridiron/internal/domain/alias"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/round"
)

// pointsPrecision is the number of decimals kept on fantasy_pts.
const pointsPrecision = 2

// Weights maps a scoring kind to points per unit.
type Weights map[alias.Kind]float64

// DefaultWeights returns the built-in PPR weights used for any kind the
// league does not configure.
func DefaultWeights() Weights {
	return Weights{
		alias.PassYd:      0.04,
		alias.PassTD:      4,
		alias.PassInt:     -1,
		alias.RushYd:      0.1,
		alias.RushTD:      6,
		alias.Rec:         1,
		alias.RecYd:       0.1,
		alias.RecTD:       6,
		alias.FumblesLost: -2,
		alias.TwoPt:       2,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLeagueSettings merges a league's scoring settings over the current
// weights. Keys are resolved through the alias table, so "fum_lost" sets
// fumbles_lost; keys for unrecognized kinds are ignored.
func WithLeagueSettings(settings map[string]float64) Option {
	return func(e *Engine) {
		e.merge(settings)
	}
}

// WithOverrides applies operator overrides after league settings.
func WithOverrides(overrides map[string]float64) Option {
	return func(e *Engine) {
		e.merge(overrides)
	}
}

// Engine scores records with a fixed weight set.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine starting from DefaultWeights.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) merge(settings map[string]float64) {
	if len(settings) == 0 {
		return
	}
	for _, kind := range alias.ScoringKinds {
		if w, ok := alias.Float(settings, kind); ok {
			e.weights[kind] = w
		}
	}
}

// Weights returns a copy of the effective weights.
func (e *Engine) Weights() Weights {
	out := make(Weights, len(e.weights))
	for k, v := range e.weights {
		out[k] = v
	}
	return out
}

// Score returns the weighted sum over the scoring kinds, rounded to two
// decimals. Missing stats count as zero.
func (e *Engine) Score(rec model.Record) float64 {
	var pts float64
	for _, kind := range alias.ScoringKinds {
		v, _ := alias.Float(rec.Stats, kind)
		pts += v * e.weights[kind]
	}
	return round.To(pts, pointsPrecision)
}

// Apply returns a copy of set with FantasyPts computed for every record.
func (e *Engine) Apply(set model.WeekSet) model.WeekSet {
	out := model.WeekSet{Week: set.Week, Records: make([]model.Record, len(set.Records))}
	for i, rec := range set.Records {
		rec.FantasyPts = e.Score(rec)
		out.Records[i] = rec
	}
	return out
}
