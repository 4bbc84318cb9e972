package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/notify"
	"github.com/theirongolddev/subtrack/internal/tracker"
)

// LoanView is a loan with its derived figures.
type LoanView struct {
	model.Loan
	model.LoanDetails
}

// Router builds the HTTP API.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/subscriptions", s.handleSubscriptions).Methods(http.MethodGet)
	v1.HandleFunc("/subscriptions/{id}", s.handleSubscription).Methods(http.MethodGet)
	v1.HandleFunc("/loans", s.handleLoans).Methods(http.MethodGet)
	v1.HandleFunc("/loans/{id}", s.handleLoan).Methods(http.MethodGet)
	v1.HandleFunc("/reminders", s.handleReminders).Methods(http.MethodGet)
	v1.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

func (s *Service) refresh() {
	if err := s.reload(); err != nil {
		s.deps.Logger.WithError(err).Warn("reload: some records could not be renewed")
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.refresh()
	writeJSON(w, http.StatusOK, s.summary(s.deps.Now()))
}

func (s *Service) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	s.refresh()
	writeJSON(w, http.StatusOK, s.deps.Subscriptions.Sorted())
}

func (s *Service) handleSubscription(w http.ResponseWriter, r *http.Request) {
	s.refresh()
	id := mux.Vars(r)["id"]
	sub, ok := s.deps.Subscriptions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("subscription %s: %w", id, tracker.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Service) handleLoans(w http.ResponseWriter, _ *http.Request) {
	s.refresh()
	loans := s.deps.Loans.Sorted()
	out := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		out = append(out, LoanView{Loan: l, LoanDetails: billing.CalculateLoanDetails(l)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleLoan(w http.ResponseWriter, r *http.Request) {
	s.refresh()
	id := mux.Vars(r)["id"]
	l, ok := s.deps.Loans.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("loan %s: %w", id, tracker.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, LoanView{Loan: l, LoanDetails: billing.CalculateLoanDetails(l)})
}

func (s *Service) handleReminders(w http.ResponseWriter, r *http.Request) {
	days := s.cfg.RemindDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("days must be a non-negative integer"))
			return
		}
		days = n
	}
	s.refresh()
	writeJSON(w, http.StatusOK, notify.Collect(s.deps.Subscriptions.All(), s.deps.Loans.All(), s.deps.Now(), days))
}

func (s *Service) handleRun(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.RunPass())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current totals immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Totals:    s.snapshotStatus().Totals,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
