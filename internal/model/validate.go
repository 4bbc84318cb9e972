package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Form field names used as ValidationError keys.
const (
	FieldVendor           = "vendor"
	FieldDatePurchased    = "datePurchased"
	FieldRenewalDate      = "renewalDate"
	FieldAmount           = "amount"
	FieldColorTag         = "colorTag"
	FieldBillingCycle     = "billingCycle"
	FieldTotalLoanAmount  = "totalLoanAmount"
	FieldAmountPaidSoFar  = "amountPaidSoFar"
	FieldPaymentAmount    = "paymentAmount"
	FieldPaymentDate      = "paymentDate"
	FieldLastPaymentDate  = "lastPaymentDate"
	FieldFinalPaymentDate = "finalPaymentDate"
)

// ValidationError carries one message per offending form field. A form that
// produces one must not be saved.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func checkOptionalDate(errs fieldErrors, field, label, value string) {
	if value != "" && !IsValidDate(value) {
		errs.add(field, label+" must be a valid date (YYYY-MM-DD)")
	}
}

func checkColorAndCycle(errs fieldErrors, color string, cycle BillingCycle) {
	if _, ok := LookupColor(color); !ok {
		errs.add(FieldColorTag, fmt.Sprintf("Color must be one of the preset colors, got %q", color))
	}
	if cycle != "" && !cycle.Valid() {
		errs.add(FieldBillingCycle, fmt.Sprintf("Unknown billing cycle %q", cycle))
	}
}

// ValidateSubscription checks a subscription draft the way the entry form does.
func ValidateSubscription(s Subscription) error {
	errs := fieldErrors{}
	if strings.TrimSpace(s.Vendor) == "" {
		errs.add(FieldVendor, "Vendor is required")
	}
	switch {
	case s.RenewalDate == "":
		errs.add(FieldRenewalDate, "Renewal date is required")
	case !IsValidDate(s.RenewalDate):
		errs.add(FieldRenewalDate, "Renewal date must be a valid date (YYYY-MM-DD)")
	}
	if !positiveAmount(s.Amount) {
		errs.add(FieldAmount, "Amount must be greater than 0")
	}
	checkOptionalDate(errs, FieldDatePurchased, "Date purchased", s.DatePurchased)
	checkColorAndCycle(errs, s.ColorTag, s.BillingCycle)
	return errs.err()
}

// ValidateLoan checks a loan draft the way the entry form does. The
// paid <= total rule is only enforced here, never on read.
func ValidateLoan(l Loan) error {
	errs := fieldErrors{}
	if strings.TrimSpace(l.Vendor) == "" {
		errs.add(FieldVendor, "Vendor is required")
	}
	if !positiveAmount(l.TotalLoanAmount) {
		errs.add(FieldTotalLoanAmount, "Total loan amount must be greater than 0")
	}
	if !positiveAmount(l.PaymentAmount) {
		errs.add(FieldPaymentAmount, "Payment amount must be greater than 0")
	}
	switch {
	case l.PaymentDate == "":
		errs.add(FieldPaymentDate, "Payment date is required")
	case !IsValidDate(l.PaymentDate):
		errs.add(FieldPaymentDate, "Payment date must be a valid date (YYYY-MM-DD)")
	}
	switch {
	case !finite(l.AmountPaidSoFar):
		errs.add(FieldAmountPaidSoFar, "Amount paid must be a number")
	case l.AmountPaidSoFar < 0:
		errs.add(FieldAmountPaidSoFar, "Amount paid cannot be negative")
	case l.AmountPaidSoFar > l.TotalLoanAmount:
		errs.add(FieldAmountPaidSoFar, "Amount paid cannot exceed total loan amount")
	}
	checkOptionalDate(errs, FieldLastPaymentDate, "Last payment date", l.LastPaymentDate)
	checkOptionalDate(errs, FieldFinalPaymentDate, "Final payment date", l.FinalPaymentDate)
	checkColorAndCycle(errs, l.ColorTag, l.BillingCycle)
	return errs.err()
}

// SubscriptionForm holds raw form input before conversion.
type SubscriptionForm struct {
	Vendor        string
	Description   string
	DatePurchased string
	RenewalDate   string
	Amount        string
	ColorTag      string
	BillingCycle  string
}

// NewSubscriptionForm prefills a form from an existing record, or with the
// defaults (monthly, first palette color) when s is nil.
func NewSubscriptionForm(s *Subscription) SubscriptionForm {
	if s == nil {
		return SubscriptionForm{ColorTag: DefaultColor, BillingCycle: string(CycleMonthly)}
	}
	return SubscriptionForm{
		Vendor:        s.Vendor,
		Description:   s.Description,
		DatePurchased: s.DatePurchased,
		RenewalDate:   s.RenewalDate,
		Amount:        formatAmountInput(s.Amount),
		ColorTag:      s.ColorTag,
		BillingCycle:  string(s.BillingCycle.OrDefault()),
	}
}

// Subscription converts and validates the form. Text fields are trimmed and
// empty optionals are dropped.
func (f SubscriptionForm) Subscription() (Subscription, error) {
	errs := fieldErrors{}
	amount, ok := parseAmountInput(f.Amount)
	if !ok {
		errs.add(FieldAmount, "Amount must be greater than 0")
	}
	cycle, err := ParseBillingCycle(f.BillingCycle)
	if err != nil {
		errs.add(FieldBillingCycle, fmt.Sprintf("Unknown billing cycle %q", f.BillingCycle))
	}
	color := f.ColorTag
	if c, ok := LookupColor(color); ok {
		color = c.Value
	}

	s := Subscription{
		Vendor:        strings.TrimSpace(f.Vendor),
		Description:   strings.TrimSpace(f.Description),
		DatePurchased: strings.TrimSpace(f.DatePurchased),
		RenewalDate:   strings.TrimSpace(f.RenewalDate),
		Amount:        amount,
		ColorTag:      color,
		BillingCycle:  cycle,
	}
	if verr, ok := ValidateSubscription(s).(*ValidationError); ok {
		for k, v := range verr.Fields {
			errs.add(k, v)
		}
	}
	return s, errs.err()
}

// LoanForm holds raw loan form input before conversion.
type LoanForm struct {
	Vendor           string
	Description      string
	TotalLoanAmount  string
	AmountPaidSoFar  string
	PaymentAmount    string
	PaymentDate      string
	LastPaymentDate  string
	FinalPaymentDate string
	ColorTag         string
	BillingCycle     string
}

// NewLoanForm prefills a form from an existing loan, or with defaults.
func NewLoanForm(l *Loan) LoanForm {
	if l == nil {
		return LoanForm{AmountPaidSoFar: "0", ColorTag: DefaultColor, BillingCycle: string(CycleMonthly)}
	}
	return LoanForm{
		Vendor:           l.Vendor,
		Description:      l.Description,
		TotalLoanAmount:  formatAmountInput(l.TotalLoanAmount),
		AmountPaidSoFar:  formatAmountInput(l.AmountPaidSoFar),
		PaymentAmount:    formatAmountInput(l.PaymentAmount),
		PaymentDate:      l.PaymentDate,
		LastPaymentDate:  l.LastPaymentDate,
		FinalPaymentDate: l.FinalPaymentDate,
		ColorTag:         l.ColorTag,
		BillingCycle:     string(l.BillingCycle.OrDefault()),
	}
}

// Loan converts and validates the form.
func (f LoanForm) Loan() (Loan, error) {
	errs := fieldErrors{}
	total, ok := parseAmountInput(f.TotalLoanAmount)
	if !ok {
		errs.add(FieldTotalLoanAmount, "Total loan amount must be greater than 0")
	}
	payment, ok := parseAmountInput(f.PaymentAmount)
	if !ok {
		errs.add(FieldPaymentAmount, "Payment amount must be greater than 0")
	}
	paid := 0.0
	if strings.TrimSpace(f.AmountPaidSoFar) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.AmountPaidSoFar), 64)
		if err != nil || !finite(v) {
			errs.add(FieldAmountPaidSoFar, "Amount paid must be a number")
		}
		paid = v
	}
	cycle, err := ParseBillingCycle(f.BillingCycle)
	if err != nil {
		errs.add(FieldBillingCycle, fmt.Sprintf("Unknown billing cycle %q", f.BillingCycle))
	}
	color := f.ColorTag
	if c, ok := LookupColor(color); ok {
		color = c.Value
	}

	l := Loan{
		Vendor:           strings.TrimSpace(f.Vendor),
		Description:      strings.TrimSpace(f.Description),
		TotalLoanAmount:  total,
		AmountPaidSoFar:  paid,
		PaymentAmount:    payment,
		PaymentDate:      strings.TrimSpace(f.PaymentDate),
		LastPaymentDate:  strings.TrimSpace(f.LastPaymentDate),
		FinalPaymentDate: strings.TrimSpace(f.FinalPaymentDate),
		ColorTag:         color,
		BillingCycle:     cycle,
	}
	if verr, ok := ValidateLoan(l).(*ValidationError); ok {
		for k, v := range verr.Fields {
			errs.add(k, v)
		}
	}
	return l, errs.err()
}

func parseAmountInput(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !positiveAmount(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// positiveAmount rejects zero, negatives, NaN and both infinities.
func positiveAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func formatAmountInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
