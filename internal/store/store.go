// Package store persists the subscription and loan collections and the
// user preferences behind a small key-value port.
//
// Failures never reach the caller: a value that cannot be read or decoded
// is logged and treated as empty, and a write that fails is logged and
// dropped.
package store

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/model"
)

// Fixed storage keys.
const (
	KeySubscriptions   = "subtrack_subscriptions"
	KeyLoans           = "subtrack_loans"
	KeyBannerDismissed = "subtrack_banner_dismissed"
)

// Store is the typed view over a KV.
type Store struct {
	kv  KV
	log *logrus.Logger
}

// New wraps kv. A nil logger discards output.
func New(kv KV, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Store{kv: kv, log: log}
}

// KV exposes the underlying driver.
func (s *Store) KV() KV { return s.kv }

// Close closes the underlying driver.
func (s *Store) Close() error { return s.kv.Close() }

// Subscriptions returns the stored subscriptions, or an empty slice.
func (s *Store) Subscriptions() []model.Subscription {
	return loadList[model.Subscription](s, KeySubscriptions)
}

// SaveSubscriptions rewrites the whole subscription collection.
func (s *Store) SaveSubscriptions(subs []model.Subscription) {
	saveList(s, KeySubscriptions, subs)
}

// Loans returns the stored loans, or an empty slice.
func (s *Store) Loans() []model.Loan {
	return loadList[model.Loan](s, KeyLoans)
}

// SaveLoans rewrites the whole loan collection.
func (s *Store) SaveLoans(loans []model.Loan) {
	saveList(s, KeyLoans, loans)
}

// BannerDismissed reports whether the dashboard banner was dismissed.
func (s *Store) BannerDismissed() bool {
	var dismissed bool
	if !s.getJSON(KeyBannerDismissed, &dismissed) {
		return false
	}
	return dismissed
}

// SetBannerDismissed persists the banner preference.
func (s *Store) SetBannerDismissed(dismissed bool) {
	s.setJSON(KeyBannerDismissed, dismissed)
}

// ResetBanner forgets the banner preference so the banner shows again.
func (s *Store) ResetBanner() {
	s.delete(KeyBannerDismissed)
}

// Reset clears both collections. Callers reload their state afterwards.
func (s *Store) Reset() {
	s.delete(KeySubscriptions)
	s.delete(KeyLoans)
}

func loadList[T any](s *Store, key string) []T {
	var out []T
	if !s.getJSON(key, &out) || out == nil {
		return []T{}
	}
	return out
}

func saveList[T any](s *Store, key string, v []T) {
	if v == nil {
		v = []T{}
	}
	s.setJSON(key, v)
}

// getJSON decodes key into dst. It returns false when the key is missing
// or unreadable; the latter is logged.
func (s *Store) getJSON(key string, dst any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "op": "read"}).WithError(err).Warn("store read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "op": "decode"}).WithError(err).Warn("stored value is not valid JSON")
		return false
	}
	return true
}

func (s *Store) setJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "op": "encode"}).WithError(err).Warn("store encode failed")
		return
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "op": "write"}).WithError(err).Warn("store write failed")
	}
}

func (s *Store) delete(key string) {
	if err := s.kv.Delete(key); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "op": "delete"}).WithError(err).Warn("store delete failed")
	}
}
