// Package normalize turns loosely-typed provider stat rows into canonical
// records. Nothing here fails: malformed input degrades to blanks and zeros.
package normalize

import (
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/alias"
	"github.com/okian/gridiron/internal/domain/model"
)

// Report counts what a week's normalization discarded.
type Report struct {
	Input      int
	Kept       int
	NoIdentity int
	Duplicates int
}

// Record normalizes one raw row. ok is false when no identity resolves.
func Record(raw model.RawStats, catalog model.Catalog) (model.Record, bool) {
	id := alias.Text(raw, alias.PlayerID)
	if id == "" {
		return model.Record{}, false
	}
	meta := catalog[id]

	rec := model.Record{
		PlayerID: id,
		Name:     firstNonEmpty(alias.Text(raw, alias.Name), meta.DisplayName()),
		Team:     firstNonEmpty(alias.Text(raw, alias.Team), meta.Team),
		Pos:      firstNonEmpty(Position(alias.Text(raw, alias.Position)), Position(meta.Position)),
		Opp:      alias.Text(raw, alias.Opponent),
		Stats:    make(map[string]float64, len(raw)),
	}
	rec.Targets, _ = alias.Number(raw, alias.Targets)
	rec.RushAtt, _ = alias.Number(raw, alias.RushAtt)

	for _, kind := range alias.ScoringKinds {
		v, _ := alias.Number(raw, kind)
		rec.Stats[string(kind)] = v
	}
	// keep unknown numeric fields so future scoring kinds need no reprocessing
	for k, v := range raw {
		if alias.IsAlias(k) || k == "fantasy_pts" || !alias.IsNumeric(v) {
			continue
		}
		f, _ := alias.ToFloat(v)
		rec.Stats[k] = f
	}
	return rec, true
}

// Week normalizes a week's rows. Records without identity are dropped; a
// repeated identity keeps its first occurrence. Output is ordered by player id.
func Week(week int, rows []model.RawStats, catalog model.Catalog) (model.WeekSet, Report) {
	rep := Report{Input: len(rows)}
	seen := make(map[string]struct{}, len(rows))
	out := make([]model.Record, 0, len(rows))

	for _, raw := range rows {
		rec, ok := Record(raw, catalog)
		if !ok {
			rep.NoIdentity++
			continue
		}
		if _, dup := seen[rec.PlayerID]; dup {
			rep.Duplicates++
			continue
		}
		seen[rec.PlayerID] = struct{}{}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	rep.Kept = len(out)
	return model.WeekSet{Week: week, Records: out}, rep
}

// Position canonicalizes a position label; unknown labels become "".
func Position(pos string) string {
	p := strings.ToUpper(strings.TrimSpace(pos))
	switch p {
	case "DST", "D/ST", "DEF/ST":
		p = model.PosDEF
	case "PK":
		p = model.PosK
	}
	if !model.IsKnownPosition(p) {
		return ""
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
