// Package alias holds the one ordered table of source key spellings used by
// both normalization and scoring. A stat kind resolves to the first alias
// present in a row; absence means zero.
package alias

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind names a canonical field.
type Kind string

// Scoring kinds.
const (
	PassYd      Kind = "pass_yd"
	PassTD      Kind = "pass_td"
	PassInt     Kind = "pass_int"
	RushYd      Kind = "rush_yd"
	RushTD      Kind = "rush_td"
	Rec         Kind = "rec"
	RecYd       Kind = "rec_yd"
	RecTD       Kind = "rec_td"
	FumblesLost Kind = "fumbles_lost"
	TwoPt       Kind = "two_pt"
)

// Usage and descriptive kinds.
const (
	Targets  Kind = "targets"
	RushAtt  Kind = "rush_att"
	PlayerID Kind = "player_id"
	Team     Kind = "team"
	Opponent Kind = "opp"
	Position Kind = "pos"
	Name     Kind = "name"
)

// ScoringKinds is the fixed, ordered set of kinds the scoring engine weighs.
var ScoringKinds = []Kind{PassYd, PassTD, PassInt, RushYd, RushTD, Rec, RecYd, RecTD, FumblesLost, TwoPt}

var table = map[Kind][]string{
	PassYd:      {"pass_yd", "pass_yds"},
	PassTD:      {"pass_td"},
	PassInt:     {"pass_int"},
	RushYd:      {"rush_yd", "rush_yds"},
	RushTD:      {"rush_td"},
	Rec:         {"rec", "receptions"},
	RecYd:       {"rec_yd", "rec_yds"},
	RecTD:       {"rec_td"},
	FumblesLost: {"fum_lost", "fumbles_lost"},
	TwoPt:       {"two_pt", "two_ptm", "two_pt_conv"},

	Targets:  {"tgt", "targets", "rec_tgt"},
	RushAtt:  {"rush_att", "rushing_att", "att_rush"},
	PlayerID: {"player_id", "playerId", "pid", "sleeper_id", "id"},
	Team:     {"team", "player_team"},
	Opponent: {"opponent", "opp"},
	Position: {"pos", "position"},
	Name:     {"name", "full_name", "player_name"},
}

// Keys returns the declared aliases for kind in priority order.
func Keys(kind Kind) []string {
	return table[kind]
}

// IsAlias reports whether key is a declared spelling of any kind.
func IsAlias(key string) bool {
	_, ok := reverse[key]
	return ok
}

var reverse = func() map[string]Kind {
	r := make(map[string]Kind)
	for k, keys := range table {
		for _, key := range keys {
			r[key] = k
		}
	}
	return r
}()

// Number resolves kind in a loosely-typed row. Present means the key exists
// and its value converts to a finite number; the first present alias wins.
func Number(row map[string]any, kind Kind) (float64, bool) {
	for _, key := range table[kind] {
		v, ok := row[key]
		if !ok {
			continue
		}
		if f, ok := ToFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// Float resolves kind in an already numeric map.
func Float(values map[string]float64, kind Kind) (float64, bool) {
	for _, key := range table[kind] {
		if v, ok := values[key]; ok {
			return v, true
		}
	}
	return 0, false
}

// Text resolves kind to the first non-empty string alias. Numbers are
// formatted without exponent so numeric ids survive.
func Text(row map[string]any, kind Kind) string {
	for _, key := range table[kind] {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if s := toText(v); s != "" {
			return s
		}
	}
	return ""
}

// ToFloat converts provider values to float64. Numeric strings parse;
// anything else (nil, bool, objects, NaN, Inf) is not a number.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsNumeric reports whether v is a native number (not a numeric string).
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32, json.Number:
		_, ok := ToFloat(v)
		return ok
	}
	return false
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
