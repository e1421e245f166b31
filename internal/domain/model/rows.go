package model

// SeasonRow is one player's season-to-date line.
type SeasonRow struct {
	PlayerID  string  `json:"player_id"`
	Name      string  `json:"name"`
	Pos       string  `json:"pos"`
	Games     int     `json:"games"`
	PPG       float64 `json:"ppg"`
	TgtPG     float64 `json:"tgt_pg"`
	RushAttPG float64 `json:"rush_att_pg"`
}

// UsageRow is one player's share of the team's weekly targets and carries.
type UsageRow struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	Team        string  `json:"team"`
	Pos         string  `json:"pos"`
	Targets     float64 `json:"targets"`
	RushAtt     float64 `json:"rush_att"`
	TargetShare float64 `json:"target_share"`
	CarryShare  float64 `json:"carry_share"`
}

// SOSRow is the average fantasy output a defense allowed to one position.
type SOSRow struct {
	DefTeam      string  `json:"def_team"`
	Pos          string  `json:"pos"`
	PtsAllowedPG float64 `json:"pts_allowed_pg"`
	Games        int     `json:"games"`
}

// ValueRow is a player's trade value with overall and positional rank.
type ValueRow struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	Pos         string  `json:"pos"`
	PPG         float64 `json:"ppg"`
	ZPPG        float64 `json:"z_ppg"`
	Value       float64 `json:"value"`
	OverallRank int     `json:"overall_rank"`
	PosRank     int     `json:"pos_rank"`
}
