package service

// StatsReport summarizes a stats build.
type StatsReport struct {
	Season      int      `json:"season"`
	Week        int      `json:"week"`
	WeekRows    int      `json:"week_rows"`
	SeasonRows  int      `json:"season_rows"`
	UsageRows   int      `json:"usage_rows"`
	SOSRows     int      `json:"sos_rows"`
	Dropped     int      `json:"dropped"`
	FailedWeeks []int    `json:"failed_weeks"`
	Keys        []string `json:"keys"`
}

// ValuesReport summarizes a trade value build.
type ValuesReport struct {
	Season int    `json:"season"`
	Date   string `json:"date"`
	Rows   int    `json:"rows"`
	Key    string `json:"key"`
}

// PublishReport summarizes a league glue publish.
type PublishReport struct {
	Season    int      `json:"season"`
	Week      int      `json:"week"`
	Rosters   int      `json:"rosters"`
	Available int      `json:"available"`
	Injuries  int      `json:"injuries"`
	Keys      []string `json:"keys"`
}

// HistoryReport summarizes a season transaction history build.
type HistoryReport struct {
	Season      int      `json:"season"`
	Weeks       int      `json:"weeks"`
	Moves       int      `json:"moves"`
	FailedWeeks []int    `json:"failed_weeks"`
	Keys        []string `json:"keys"`
}

// RunReport summarizes a full pipeline run.
type RunReport struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at,omitempty"`
	Stats      *StatsReport   `json:"stats,omitempty"`
	Values     *ValuesReport  `json:"values,omitempty"`
	Publish    *PublishReport `json:"publish,omitempty"`
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)
