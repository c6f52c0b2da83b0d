package model

// RestoreState tells a session screen how to resume after losing focus.
type RestoreState struct {
	HasEvents     bool             `json:"has_events"`
	IsPaused      bool             `json:"is_paused"`
	CountSnapshot int              `json:"count_snapshot"`
	LastEventType SessionEventType `json:"last_event_type,omitempty"`
}

// RestoreFrom reduces a session log to its latest event. A nil event means
// the session never recorded anything.
func RestoreFrom(latest *SessionEvent) RestoreState {
	if latest == nil {
		return RestoreState{}
	}
	return RestoreState{
		HasEvents:     true,
		IsPaused:      latest.EventType == SessionPause,
		CountSnapshot: max(0, latest.CountSnapshot),
		LastEventType: latest.EventType,
	}
}

// WeeklyRecoveryStatus sums the ledger entries of one week regardless of
// their status. Stale is set when the value came from the last-known cache
// because the store could not be read.
type WeeklyRecoveryStatus struct {
	WeekStartLocal string `json:"week_start_local"`
	RemainingCount int    `json:"remaining_count"`
	GeneratedCount int    `json:"generated_count"`
	ResolvedCount  int    `json:"resolved_count"`
	Stale          bool   `json:"stale,omitempty"`
}

// TodayObligationStatus summarizes the open obligations due today.
type TodayObligationStatus struct {
	DateKey             string `json:"date_key"`
	OpenObligationCount int    `json:"open_obligation_count"`
	RemainingCount      int    `json:"remaining_count"`
	Stale               bool   `json:"stale,omitempty"`
}

// OpenObligation is an obligation still owed today with its outstanding count.
type OpenObligation struct {
	Obligation
	RemainingCount int `json:"remaining_count"`
}

// SweepReport counts what one maintenance pass changed.
type SweepReport struct {
	Completed      int `json:"completed"`
	Unmet          int `json:"unmet"`
	EntriesCreated int `json:"entries_created"`
	EntriesReset   int `json:"entries_reset"`
}

// Changed reports whether the pass mutated anything.
func (r SweepReport) Changed() bool {
	return r.Completed+r.Unmet+r.EntriesCreated+r.EntriesReset > 0
}

// SavingsSummary totals skipped-meal calories over three local windows.
type SavingsSummary struct {
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// StatsPeriod selects the window of a Stats report.
type StatsPeriod string

const (
	// StatsWeek is the seven local days ending today.
	StatsWeek StatsPeriod = "week"
	// StatsMonth runs from the first of this month through today.
	StatsMonth StatsPeriod = "month"
)

func (p StatsPeriod) IsValid() bool {
	return p == StatsWeek || p == StatsMonth
}

// DailyCalories is the skipped-meal total of one local day.
type DailyCalories struct {
	DateKey  string `json:"date_key"`
	Calories int    `json:"calories"`
}

// ChoiceRatio counts meal decisions.
type ChoiceRatio struct {
	AteCount     int `json:"ate_count"`
	SkippedCount int `json:"skipped_count"`
	Total        int `json:"total"`
}

// ExerciseSummary totals finished sessions. ByType counts sessions, not reps.
type ExerciseSummary struct {
	ByType              map[ExerciseType]int `json:"by_type"`
	TotalReps           int                  `json:"total_reps"`
	TotalCaloriesBurned int                  `json:"total_calories_burned"`
	TotalSessions       int                  `json:"total_sessions"`
}

// Stats is the meal and exercise report for one period.
type Stats struct {
	Period             StatsPeriod     `json:"period"`
	FromDate           string          `json:"from_date"`
	ToDate             string          `json:"to_date"`
	DailyCalories      []DailyCalories `json:"daily_calories"`
	TotalSavedCalories int             `json:"total_saved_calories"`
	ChoiceRatio        ChoiceRatio     `json:"choice_ratio"`
	Exercise           ExerciseSummary `json:"exercise"`
}
