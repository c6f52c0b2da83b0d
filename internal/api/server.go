package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/metrics"
)

// NewRouter wires every route. gatherer backs /metrics; nil leaves it out.
func NewRouter(h *Handler, m *metrics.Manager, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/status/week", h.HandleWeekStatus).Methods("GET").Name("week-status")
	r.HandleFunc("/status/today", h.HandleTodayStatus).Methods("GET").Name("today-status")

	r.HandleFunc("/obligations", h.HandleCreateObligation).Methods("POST").Name("create-obligation")
	r.HandleFunc("/obligations/open", h.HandleOpenObligations).Methods("GET").Name("open-obligations")
	r.HandleFunc("/obligations/{id}", h.HandleGetObligation).Methods("GET").Name("get-obligation")
	r.HandleFunc("/obligations/{id}/target", h.HandleUpdateTarget).Methods("PUT").Name("update-target")
	r.HandleFunc("/obligations/{id}/progress", h.HandleProgress).Methods("POST").Name("apply-progress")
	r.HandleFunc("/obligations/{id}/finish", h.HandleFinish).Methods("POST").Name("finish-session")
	r.HandleFunc("/obligations/{id}/events", h.HandleSessionEvent).Methods("POST").Name("session-event")
	r.HandleFunc("/obligations/{id}/events", h.HandleSessionLog).Methods("GET").Name("session-log")
	r.HandleFunc("/obligations/{id}/restore", h.HandleRestore).Methods("GET").Name("restore-state")

	r.HandleFunc("/recovery", h.HandleRecovery).Methods("POST").Name("apply-recovery")
	r.HandleFunc("/sweep", h.HandleSweep).Methods("POST").Name("sweep")

	r.HandleFunc("/meals", h.HandleRecordMeal).Methods("POST").Name("record-meal")
	r.HandleFunc("/meals", h.HandleListMeals).Methods("GET").Name("list-meals")
	r.HandleFunc("/meals/savings", h.HandleSavings).Methods("GET").Name("savings")

	r.HandleFunc("/stats", h.HandleStats).Methods("GET").Name("stats")
	r.HandleFunc("/exercises", h.HandleExercises).Methods("GET").Name("exercises")

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")
	}

	r.Use(PanicRecovery())
	r.Use(LogRequest())
	r.Use(RequestMetrics(m))

	return r
}

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
		},
	}
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof(" > server listening on: [%s]", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Infof("shutting down server on [%s]", s.httpServer.Addr)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
