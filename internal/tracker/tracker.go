// Package tracker holds the in-memory subscription and loan collections,
// mirrors them to the store and applies the load-time renewal pass.
package tracker

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when an operation names an id that is not in the
// collection. Nothing is persisted in that case.
var ErrNotFound = errors.New("record not found")

// ConfirmFunc is asked before a record is deleted. Returning false cancels.
type ConfirmFunc[T any] func(T) bool

type options struct {
	now   func() time.Time
	newID func() string
	log   *logrus.Logger
}

// Option customizes a controller.
type Option func(*options)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides record id assignment.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithLogger sets the logger used for renewal problems.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.New()
		o.log.SetOutput(io.Discard)
	}
	return o
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type record interface {
	RecordID() string
	DueDate() string
}

func indexOf[T record](items []T, id string) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

// without returns a fresh slice with items[i] removed.
func without[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// SortByDue returns a copy of items ordered by ascending due date.
// ISO dates order correctly as strings.
func SortByDue[T record](items []T) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate() < out[j].DueDate()
	})
	return out
}
