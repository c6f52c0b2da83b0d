package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/catalog"
	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/stats"
	"github.com/roach88/repledger/internal/store"
)

// Handler serves the recovery service over JSON. Every request reads the
// clock once and passes that instant down.
type Handler struct {
	svc   *recovery.Service
	meals *meals.Recorder
	stats *stats.Reporter
	clock calendar.Clock
}

func NewHandler(svc *recovery.Service, recorder *meals.Recorder, reporter *stats.Reporter, clock calendar.Clock) *Handler {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return &Handler{svc: svc, meals: recorder, stats: reporter, clock: clock}
}

type createObligationRequest struct {
	MealRecordID string `json:"meal_record_id"`
	ExerciseType string `json:"exercise_type"`
	TargetCount  int    `json:"target_count"`
}

type updateTargetRequest struct {
	ExerciseType string `json:"exercise_type"`
	TargetCount  int    `json:"target_count"`
}

type countRequest struct {
	Count int `json:"count"`
}

type leftoverResponse struct {
	Leftover int `json:"leftover"`
}

type sessionEventRequest struct {
	EventType     string `json:"event_type"`
	CountSnapshot int    `json:"count_snapshot"`
}

type mealRequest struct {
	FoodName          string `json:"food_name"`
	EstimatedCalories int    `json:"estimated_calories"`
	Confidence        int    `json:"confidence"`
	Decision          string `json:"decision"`
	ExerciseType      string `json:"exercise_type"`
	TargetReps        int    `json:"target_reps"`
}

func (h *Handler) HandleWeekStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.WeeklyRecoveryStatus(r.Context(), h.clock.Now())
	if err != nil {
		writeServiceError(w, "weekly status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleTodayStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.TodayObligationStatus(r.Context(), h.clock.Now())
	if err != nil {
		writeServiceError(w, "today status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleOpenObligations(w http.ResponseWriter, r *http.Request) {
	open, err := h.svc.TodayOpenObligations(r.Context(), h.clock.Now())
	if err != nil {
		writeServiceError(w, "open obligations", err)
		return
	}
	writeJSON(w, http.StatusOK, open)
}

func (h *Handler) HandleCreateObligation(w http.ResponseWriter, r *http.Request) {
	var req createObligationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.MealRecordID) == "" {
		writeError(w, http.StatusBadRequest, "meal_record_id is required")
		return
	}
	exercise, err := model.ParseExerciseType(req.ExerciseType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.CreateObligation(r.Context(), h.clock.Now(), req.MealRecordID, exercise, req.TargetCount)
	if err != nil {
		writeServiceError(w, "create obligation", err)
		return
	}
	log.Debugf("obligation %s created via api", o.ID)
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) HandleGetObligation(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetObligation(r.Context(), h.clock.Now(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "get obligation", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) HandleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	var req updateTargetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	exercise, err := model.ParseExerciseType(req.ExerciseType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateTarget(r.Context(), h.clock.Now(), mux.Vars(r)["id"], exercise, req.TargetCount); err != nil {
		writeServiceError(w, "update target", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	leftover, err := h.svc.ApplyObligationProgress(r.Context(), h.clock.Now(), mux.Vars(r)["id"], req.Count)
	if err != nil {
		writeServiceError(w, "apply progress", err)
		return
	}
	writeJSON(w, http.StatusOK, leftoverResponse{Leftover: leftover})
}

func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	leftover, err := h.svc.FinishSession(r.Context(), h.clock.Now(), mux.Vars(r)["id"], req.Count)
	if err != nil {
		writeServiceError(w, "finish session", err)
		return
	}
	writeJSON(w, http.StatusOK, leftoverResponse{Leftover: leftover})
}

func (h *Handler) HandleRecovery(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	if err := h.svc.ApplyRecoveryFromExercise(r.Context(), h.clock.Now(), req.Count); err != nil {
		writeServiceError(w, "apply recovery", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSessionEvent(w http.ResponseWriter, r *http.Request) {
	var req sessionEventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	eventType, err := model.ParseSessionEventType(req.EventType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev := h.svc.RecordEvent(r.Context(), h.clock.Now(), mux.Vars(r)["id"], eventType, req.CountSnapshot)
	writeJSON(w, http.StatusAccepted, ev)
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.RestoreState(r.Context(), h.clock.Now(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "restore state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) HandleSessionLog(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.SessionLog(r.Context(), h.clock.Now(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, "session log", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Sweep(r.Context(), h.clock.Now())
	if err != nil {
		writeServiceError(w, "sweep", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleRecordMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	decision, err := model.ParseMealChoice(req.Decision)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	choice := meals.Choice{
		FoodName:          req.FoodName,
		EstimatedCalories: req.EstimatedCalories,
		Confidence:        req.Confidence,
		Decision:          decision,
		TargetReps:        req.TargetReps,
	}
	if req.ExerciseType != "" {
		if choice.Exercise, err = model.ParseExerciseType(req.ExerciseType); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := h.meals.RecordChoice(r.Context(), h.clock.Now(), choice)
	if err != nil {
		writeServiceError(w, "record meal", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleSavings(w http.ResponseWriter, r *http.Request) {
	sum, err := h.meals.Savings(r.Context(), h.clock.Now())
	if err != nil {
		writeServiceError(w, "savings", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleListMeals serves GET /meals?decision=&limit=, newest first.
func (h *Handler) HandleListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.MealFilter
	if d := q.Get("decision"); d != "" {
		choice, err := model.ParseMealChoice(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Choice = choice
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	list, err := h.meals.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, "list meals", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleStats serves GET /stats?period=week|month. The period defaults to
// week.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	period := model.StatsWeek
	if p := r.URL.Query().Get("period"); p != "" {
		var err error
		if period, err = model.ParseStatsPeriod(p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	report, err := h.stats.Report(r.Context(), h.clock.Now(), period)
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}
