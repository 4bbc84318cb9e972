package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
)

// Subscriptions is the subscription page controller.
type Subscriptions struct {
	mu    sync.RWMutex
	store *store.Store
	items []model.Subscription
	opts  options
}

// NewSubscriptions creates a controller. Call Load before use.
func NewSubscriptions(st *store.Store, opts ...Option) *Subscriptions {
	return &Subscriptions{store: st, items: []model.Subscription{}, opts: buildOptions(opts)}
}

// Load reads the collection and rolls every overdue renewal date forward.
// The collection is written back once, and only if a record changed.
// Records that cannot be renewed are kept as stored; their errors are
// joined into the returned error.
func (c *Subscriptions) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.now()
	items := c.store.Subscriptions()
	var errs []error
	dirty := false
	for i, s := range items {
		renewed, changed, err := billing.AutoRenewSubscription(s, now)
		if err != nil {
			c.opts.log.WithFields(logrus.Fields{"id": s.ID, "vendor": s.Vendor}).WithError(err).Error("subscription renewal failed")
			errs = append(errs, fmt.Errorf("subscription %s (%s): %w", s.ID, s.Vendor, err))
			continue
		}
		if changed {
			items[i] = renewed
			dirty = true
		}
	}
	c.items = items
	if dirty {
		c.store.SaveSubscriptions(c.items)
	}
	return errors.Join(errs...)
}

// All returns a copy of the collection in stored order.
func (c *Subscriptions) All() []model.Subscription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Subscription(nil), c.items...)
}

// Sorted returns the collection ordered by renewal date.
func (c *Subscriptions) Sorted() []model.Subscription {
	return SortByDue(c.All())
}

// Get looks up one subscription.
func (c *Subscriptions) Get(id string) (model.Subscription, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], true
	}
	return model.Subscription{}, false
}

// Add validates draft, assigns a fresh id and appends it.
func (c *Subscriptions) Add(draft model.Subscription) (model.Subscription, error) {
	if err := model.ValidateSubscription(draft); err != nil {
		return model.Subscription{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	draft.ID = c.opts.newID()
	c.items = append(c.items, draft)
	c.store.SaveSubscriptions(c.items)
	return draft, nil
}

// Update replaces every field of the record with the given id except the id.
func (c *Subscriptions) Update(id string, draft model.Subscription) (model.Subscription, error) {
	if err := model.ValidateSubscription(draft); err != nil {
		return model.Subscription{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		return model.Subscription{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	draft.ID = id
	c.items[i] = draft
	c.store.SaveSubscriptions(c.items)
	return draft, nil
}

// Delete removes the record after confirm approves it. A nil confirm never
// approves. It reports whether the record was removed.
func (c *Subscriptions) Delete(id string, confirm ConfirmFunc[model.Subscription]) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		return false, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if confirm == nil || !confirm(c.items[i]) {
		return false, nil
	}
	c.items = without(c.items, i)
	c.store.SaveSubscriptions(c.items)
	return true, nil
}

// MarkAsPaid advances the renewal date by exactly one cycle, however
// overdue the record is.
func (c *Subscriptions) MarkAsPaid(id string) (model.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		return model.Subscription{}, fmt.Errorf("mark paid %s: %w", id, ErrNotFound)
	}
	s := c.items[i]
	next, err := billing.NextRenewalDate(s.RenewalDate, s.BillingCycle)
	if err != nil {
		return s, fmt.Errorf("mark paid %s: %w", id, err)
	}
	s.RenewalDate = next
	c.items[i] = s
	c.store.SaveSubscriptions(c.items)
	return s, nil
}

// Replace swaps in a whole collection (import). Records keep their ids.
func (c *Subscriptions) Replace(subs []model.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]model.Subscription{}, subs...)
	c.store.SaveSubscriptions(c.items)
}
