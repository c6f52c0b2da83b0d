package model

import "time"

// ExerciseType identifies the movement an obligation asks for.
type ExerciseType string

const (
	ExerciseSquat  ExerciseType = "squat"
	ExerciseSitup  ExerciseType = "situp"
	ExercisePushup ExerciseType = "pushup"
)

// ExerciseTypes lists every supported exercise in display order.
var ExerciseTypes = []ExerciseType{ExerciseSquat, ExerciseSitup, ExercisePushup}

func (t ExerciseType) String() string {
	return string(t)
}

func (t ExerciseType) IsValid() bool {
	switch t {
	case ExerciseSquat, ExerciseSitup, ExercisePushup:
		return true
	default:
		return false
	}
}

// ObligationStatus is the lifecycle state of an Obligation.
type ObligationStatus string

const (
	ObligationOpen      ObligationStatus = "open"
	ObligationCompleted ObligationStatus = "completed"
	ObligationUnmet     ObligationStatus = "unmet"
)

// IsTerminal reports whether the status can no longer change.
func (s ObligationStatus) IsTerminal() bool {
	return s == ObligationCompleted || s == ObligationUnmet
}

func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationOpen, ObligationCompleted, ObligationUnmet:
		return true
	default:
		return false
	}
}

// LedgerStatus is the lifecycle state of a LedgerEntry.
type LedgerStatus string

const (
	LedgerOpen   LedgerStatus = "open"
	LedgerClosed LedgerStatus = "closed"
	LedgerReset  LedgerStatus = "reset"
)

func (s LedgerStatus) IsValid() bool {
	switch s {
	case LedgerOpen, LedgerClosed, LedgerReset:
		return true
	default:
		return false
	}
}

// SessionEventType is a lifecycle transition inside one exercise session.
type SessionEventType string

const (
	SessionStart  SessionEventType = "start"
	SessionPause  SessionEventType = "pause"
	SessionResume SessionEventType = "resume"
	SessionEnd    SessionEventType = "end"
)

func (t SessionEventType) IsValid() bool {
	switch t {
	case SessionStart, SessionPause, SessionResume, SessionEnd:
		return true
	default:
		return false
	}
}

// Obligation is a commitment to perform TargetCount repetitions of one
// exercise by the end of the local day it was created on.
type Obligation struct {
	ID             string           `json:"id"`
	MealRecordID   string           `json:"meal_record_id"`
	CreatedAt      time.Time        `json:"created_at"`
	DueAt          time.Time        `json:"due_at"`
	DueLocalDate   string           `json:"due_local_date"`
	WeekStartLocal string           `json:"week_start_local"`
	Timezone       string           `json:"timezone"`
	ExerciseType   ExerciseType     `json:"exercise_type"`
	TargetCount    int              `json:"target_count"`
	CompletedCount int              `json:"completed_count"`
	Status         ObligationStatus `json:"status"`
	FinalizedAt    *time.Time       `json:"finalized_at,omitempty"`
}

// Remaining returns the repetitions still owed, never negative.
func (o Obligation) Remaining() int {
	return max(0, o.TargetCount-o.CompletedCount)
}

// IsOverdue reports whether an open obligation has reached its due instant.
func (o Obligation) IsOverdue(now time.Time) bool {
	return o.Status == ObligationOpen && !o.DueAt.After(now)
}

// LedgerEntry is the unmet remainder of one obligation carried forward for
// recovery during the rest of its week.
type LedgerEntry struct {
	ID                string       `json:"id"`
	ObligationID      string       `json:"obligation_id"`
	WeekStartLocal    string       `json:"week_start_local"`
	GeneratedAt       time.Time    `json:"generated_at"`
	InitialUnmetCount int          `json:"initial_unmet_count"`
	RecoveredCount    int          `json:"recovered_count"`
	RemainingCount    int          `json:"remaining_count"`
	Status            LedgerStatus `json:"status"`
	ResetAt           *time.Time   `json:"reset_at,omitempty"`
}

// SessionEvent is an immutable log record of one session transition.
type SessionEvent struct {
	ID            string           `json:"id"`
	ObligationID  string           `json:"obligation_id"`
	Timestamp     time.Time        `json:"timestamp"`
	EventType     SessionEventType `json:"event_type"`
	CountSnapshot int              `json:"count_snapshot"`
}

// MealChoice is what the user decided to do with a meal.
type MealChoice string

const (
	MealAte     MealChoice = "ate"
	MealSkipped MealChoice = "skipped"
)

func (c MealChoice) IsValid() bool {
	return c == MealAte || c == MealSkipped
}

// MealRecord is one ate/skipped decision. ObligationID is set for "ate".
type MealRecord struct {
	ID                string     `json:"id"`
	Timestamp         time.Time  `json:"timestamp"`
	FoodName          string     `json:"food_name"`
	EstimatedCalories int        `json:"estimated_calories"`
	Confidence        int        `json:"confidence"`
	Choice            MealChoice `json:"choice"`
	ObligationID      string     `json:"obligation_id,omitempty"`
}

// ExerciseRecord is one finished exercise session: the reps performed against
// an obligation and the energy they burned.
type ExerciseRecord struct {
	ID             string       `json:"id"`
	ObligationID   string       `json:"obligation_id"`
	MealRecordID   string       `json:"meal_record_id,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
	ExerciseType   ExerciseType `json:"exercise_type"`
	Count          int          `json:"count"`
	TargetCount    int          `json:"target_count"`
	CaloriesBurned int          `json:"calories_burned"`
}
