// Package daemon provides the long-running local service: a scheduled
// renewal and reminder pass plus a read-only HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/dashboard"
	"github.com/theirongolddev/subtrack/internal/logging"
	"github.com/theirongolddev/subtrack/internal/notify"
	"github.com/theirongolddev/subtrack/internal/tracker"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string // cron expression for the renewal and reminder pass
	RemindDays   int
	UpcomingDays int
	SoonDays     int
	EventsBuffer int
}

// Deps are the collaborators the service drives.
type Deps struct {
	Subscriptions *tracker.Subscriptions
	Loans         *tracker.Loans
	Sender        notify.Sender // nil disables delivery
	Money         cli.Money
	Logger        *logrus.Logger
	Now           func() time.Time
}

// Event is emitted after every pass.
type Event struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Totals    Totals            `json:"totals"`
	Reminders []notify.Reminder `json:"reminders"`
	Delivered bool              `json:"delivered"`
	Error     string            `json:"error,omitempty"`
}

// Totals is the compact dashboard carried on events and status.
type Totals struct {
	Subscriptions     int     `json:"subscriptions"`
	Loans             int     `json:"loans"`
	TotalMonthlyCost  float64 `json:"total_monthly_cost"`
	MonthlyEquivalent float64 `json:"monthly_equivalent"`
	OutstandingLoans  float64 `json:"outstanding_loans"`
	DueSoon           int     `json:"due_soon"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	NextRunAt       time.Time `json:"next_run_at"`
	Schedule        string    `json:"schedule"`
	RunCount        int64     `json:"run_count"`
	RemindDays      int       `json:"remind_days"`
	Totals          Totals    `json:"totals"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	deps Deps

	runMu sync.Mutex // serializes passes

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	nextRunAt   time.Time
	runCount    int64
	lastError   string
	totals      Totals
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, deps Deps) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	if cfg.RemindDays < 0 {
		cfg.RemindDays = 0
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Money.Code == "" {
		deps.Money = cli.NewMoney("USD", "en-US")
	}

	return &Service{
		cfg:       cfg,
		deps:      deps,
		startedAt: deps.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and the scheduled pass until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	entryID, err := sched.AddFunc(s.cfg.Schedule, func() { s.RunPass() })
	if err != nil {
		return fmt.Errorf("daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed state so status is useful immediately.
	s.RunPass()

	sched.Start()
	s.setNextRun(sched.Entry(entryID).Next)
	defer func() { <-sched.Stop().Done() }()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.setNextRun(sched.Entry(entryID).Next)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) setNextRun(t time.Time) {
	s.mu.Lock()
	s.nextRunAt = t
	s.mu.Unlock()
}

// reload re-reads both collections, renewing overdue dates on the way.
func (s *Service) reload() error {
	return errors.Join(s.deps.Subscriptions.Load(), s.deps.Loans.Load())
}

func (s *Service) summary(now time.Time) dashboard.Summary {
	return dashboard.Build(s.deps.Subscriptions.All(), s.deps.Loans.All(), now, dashboard.Options{
		UpcomingDays: s.cfg.UpcomingDays,
		SoonDays:     s.cfg.SoonDays,
	})
}

// RunPass renews overdue records, composes reminders for everything due
// within RemindDays and hands them to the sender.
func (s *Service) RunPass() Event {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := s.deps.Now()
	log := s.deps.Logger

	var passErrs []error
	if err := s.reload(); err != nil {
		log.WithError(err).Error("renewal pass: some records could not be renewed")
		passErrs = append(passErrs, err)
	}

	sum := s.summary(now)
	reminders := notify.Collect(s.deps.Subscriptions.All(), s.deps.Loans.All(), now, s.cfg.RemindDays)

	delivered := false
	if s.deps.Sender != nil && len(reminders) > 0 {
		subject, body := notify.Compose(reminders, s.deps.Money)
		if err := s.deps.Sender.Send(subject, body); err != nil {
			log.WithError(err).Warn("reminder delivery failed")
			passErrs = append(passErrs, err)
		} else {
			delivered = true
		}
	}
	log.WithFields(logrus.Fields{
		"subscriptions": sum.SubscriptionCount,
		"loans":         sum.LoanCount,
		"reminders":     len(reminders),
		"delivered":     delivered,
	}).Info("renewal pass complete")

	ev := Event{
		Type:      "pass",
		Timestamp: now,
		Totals:    totalsFromSummary(sum),
		Reminders: reminders,
		Delivered: delivered,
	}
	if err := errors.Join(passErrs...); err != nil {
		ev.Error = err.Error()
	}

	s.mu.Lock()
	s.lastRunAt = now
	s.runCount++
	s.lastError = ev.Error
	s.totals = ev.Totals
	s.nextEventID++
	ev.ID = s.nextEventID
	s.mu.Unlock()

	s.publishEvent(ev)
	return ev
}

func totalsFromSummary(sum dashboard.Summary) Totals {
	return Totals{
		Subscriptions:     sum.SubscriptionCount,
		Loans:             sum.LoanCount,
		TotalMonthlyCost:  sum.TotalMonthlyCost,
		MonthlyEquivalent: sum.MonthlyEquivalent,
		OutstandingLoans:  sum.OutstandingLoans,
		DueSoon:           sum.DueSoonCount,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		NextRunAt:       s.nextRunAt,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		RemindDays:      s.cfg.RemindDays,
		Totals:          s.totals,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
