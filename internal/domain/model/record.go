// Package model contains the records passed between the pipeline stages.
package model

import (
	"encoding/json"
)

// Known fantasy positions. Anything else normalizes to the empty position.
const (
	PosQB  = "QB"
	PosRB  = "RB"
	PosWR  = "WR"
	PosTE  = "TE"
	PosK   = "K"
	PosDEF = "DEF"
)

// KnownPositions lists the positions position-scoped aggregations understand.
var KnownPositions = []string{PosQB, PosRB, PosWR, PosTE, PosK, PosDEF}

// IsKnownPosition reports whether pos is one of KnownPositions.
func IsKnownPosition(pos string) bool {
	for _, p := range KnownPositions {
		if p == pos {
			return true
		}
	}
	return false
}

// RawStats is one provider stat row: arbitrary keys, numeric or string values.
type RawStats map[string]any

// CatalogEntry is the provider's player metadata.
type CatalogEntry struct {
	PlayerID        string `json:"player_id"`
	FullName        string `json:"full_name,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Team            string `json:"team,omitempty"`
	Position        string `json:"position,omitempty"`
	Status          string `json:"status,omitempty"`
	InjuryStatus    string `json:"injury_status,omitempty"`
	InjuryBodyPart  string `json:"injury_body_part,omitempty"`
	InjuryStartDate string `json:"injury_start_date,omitempty"`
	NewsUpdated     int64  `json:"news_updated,omitempty"`
}

// DisplayName returns full_name, falling back to "first last".
func (c CatalogEntry) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// Catalog maps player id to metadata.
type Catalog map[string]CatalogEntry

// Record is the canonical per-player, per-week stat row.
//
// Stats holds the ten scoring kinds under their canonical names plus every
// other numeric field of the raw row under its original key.
type Record struct {
	PlayerID   string
	Name       string
	Team       string
	Pos        string
	Opp        string
	Targets    float64
	RushAtt    float64
	Stats      map[string]float64
	FantasyPts float64
}

// Stat returns a stat value or 0 when absent.
func (r Record) Stat(key string) float64 {
	return r.Stats[key]
}

// MarshalJSON flattens the record: identity fields, every stat, usage and points
// at the top level. Map keys are emitted sorted, so output is deterministic.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Stats)+8)
	for k, v := range r.Stats {
		flat[k] = v
	}
	flat["player_id"] = r.PlayerID
	flat["name"] = nullable(r.Name)
	flat["team"] = nullable(r.Team)
	flat["pos"] = nullable(r.Pos)
	flat["opp"] = nullable(r.Opp)
	flat["targets"] = r.Targets
	flat["rush_att"] = r.RushAtt
	flat["fantasy_pts"] = r.FantasyPts
	return json.Marshal(flat)
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = Record{Stats: make(map[string]float64, len(flat))}
	for k, v := range flat {
		switch k {
		case "player_id":
			r.PlayerID, _ = v.(string)
		case "name":
			r.Name, _ = v.(string)
		case "team":
			r.Team, _ = v.(string)
		case "pos":
			r.Pos, _ = v.(string)
		case "opp":
			r.Opp, _ = v.(string)
		case "targets":
			r.Targets, _ = v.(float64)
		case "rush_att":
			r.RushAtt, _ = v.(float64)
		case "fantasy_pts":
			r.FantasyPts, _ = v.(float64)
		default:
			if f, ok := v.(float64); ok {
				r.Stats[k] = f
			}
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// WeekSet is one week's canonical records, unique by PlayerID.
type WeekSet struct {
	Week    int
	Records []Record
}
