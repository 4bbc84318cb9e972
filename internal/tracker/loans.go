package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
)

// Loans is the loan page controller.
type Loans struct {
	mu    sync.RWMutex
	store *store.Store
	items []model.Loan
	opts  options
}

// NewLoans creates a controller. Call Load before use.
func NewLoans(st *store.Store, opts ...Option) *Loans {
	return &Loans{store: st, items: []model.Loan{}, opts: buildOptions(opts)}
}

// Load reads the collection and rolls overdue payment dates forward,
// persisting once if anything changed.
func (c *Loans) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.now()
	items := c.store.Loans()
	var errs []error
	dirty := false
	for i, l := range items {
		renewed, changed, err := billing.AutoRenewLoan(l, now)
		if err != nil {
			c.opts.log.WithFields(logrus.Fields{"id": l.ID, "vendor": l.Vendor}).WithError(err).Error("loan renewal failed")
			errs = append(errs, fmt.Errorf("loan %s (%s): %w", l.ID, l.Vendor, err))
			continue
		}
		if changed {
			items[i] = renewed
			dirty = true
		}
	}
	c.items = items
	if dirty {
		c.store.SaveLoans(c.items)
	}
	return errors.Join(errs...)
}

// All returns a copy of the collection in stored order.
func (c *Loans) All() []model.Loan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Loan(nil), c.items...)
}

// Sorted returns the collection ordered by payment date.
func (c *Loans) Sorted() []model.Loan {
	return SortByDue(c.All())
}

// Get looks up one loan.
func (c *Loans) Get(id string) (model.Loan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], true
	}
	return model.Loan{}, false
}

// Add validates draft, assigns a fresh id and appends it.
func (c *Loans) Add(draft model.Loan) (model.Loan, error) {
	if err := model.ValidateLoan(draft); err != nil {
		return model.Loan{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	draft.ID = c.opts.newID()
	c.items = append(c.items, draft)
	c.store.SaveLoans(c.items)
	return draft, nil
}

// Update replaces the loan with the given id, keeping the id.
func (c *Loans) Update(id string, draft model.Loan) (model.Loan, error) {
	if err := model.ValidateLoan(draft); err != nil {
		return model.Loan{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		return model.Loan{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	draft.ID = id
	c.items[i] = draft
	c.store.SaveLoans(c.items)
	return draft, nil
}

// Delete removes the loan after confirm approves it.
func (c *Loans) Delete(id string, confirm ConfirmFunc[model.Loan]) (bool, error) {
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
	c.store.SaveLoans(c.items)
	return true, nil
}

// RecordPayment books one installment: the payment amount is added to the
// paid total (capped at the principal), today becomes the last payment
// date and the next payment date moves one cycle.
func (c *Loans) RecordPayment(id string) (model.Loan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		return model.Loan{}, fmt.Errorf("record payment %s: %w", id, ErrNotFound)
	}
	l := c.items[i]
	next, err := billing.NextRenewalDate(l.PaymentDate, l.BillingCycle)
	if err != nil {
		return l, fmt.Errorf("record payment %s: %w", id, err)
	}

	total := decimal.NewFromFloat(l.TotalLoanAmount)
	paid := decimal.NewFromFloat(l.AmountPaidSoFar).Add(decimal.NewFromFloat(l.PaymentAmount))
	if paid.GreaterThan(total) {
		paid = total
	}
	l.AmountPaidSoFar = paid.InexactFloat64()
	l.LastPaymentDate = model.FormatDate(c.opts.now())
	l.PaymentDate = next
	c.items[i] = l
	c.store.SaveLoans(c.items)
	return l, nil
}

// Replace swaps in a whole collection (import).
func (c *Loans) Replace(loans []model.Loan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]model.Loan{}, loans...)
	c.store.SaveLoans(c.items)
}
