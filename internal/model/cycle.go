package model

import (
	"fmt"
	"strings"
)

// BillingCycle is the recurrence unit that governs how a due date advances.
type BillingCycle string

// Supported billing cycles. The zero value means "absent" and is treated as
// monthly everywhere a cycle is needed.
const (
	CycleWeekly    BillingCycle = "weekly"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// Cycles lists the cycles in display order.
var Cycles = []BillingCycle{CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly}

// Valid reports whether c is one of the supported cycles.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	}
	return false
}

// OrDefault returns c, or CycleMonthly when c is absent.
func (c BillingCycle) OrDefault() BillingCycle {
	if c == "" {
		return CycleMonthly
	}
	return c
}

// Label is the short human name ("Weekly", "Quarterly (3 months)", ...).
func (c BillingCycle) Label() string {
	switch c {
	case CycleWeekly:
		return "Weekly"
	case CycleMonthly:
		return "Monthly"
	case CycleQuarterly:
		return "Quarterly (3 months)"
	case CycleYearly:
		return "Yearly"
	}
	return "Monthly"
}

// CostLabel is the amount caption shown next to a subscription price.
// An absent cycle renders as plain "Cost".
func (c BillingCycle) CostLabel() string {
	switch c {
	case CycleWeekly:
		return "Weekly Cost"
	case CycleMonthly:
		return "Monthly Cost"
	case CycleQuarterly:
		return "Quarterly Cost"
	case CycleYearly:
		return "Yearly Cost"
	}
	return "Cost"
}

// ParseBillingCycle parses a user-supplied cycle name. Empty input yields the
// absent cycle.
func ParseBillingCycle(s string) (BillingCycle, error) {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	if c == "" || c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown billing cycle %q (want weekly, monthly, quarterly or yearly)", s)
}
