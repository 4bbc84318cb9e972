// Package model defines the subscription and loan records and their
// entry-time validation.
package model

// Subscription is a recurring charge billed once per cycle.
type Subscription struct {
	ID            string       `json:"id" yaml:"id"`
	Vendor        string       `json:"vendor" yaml:"vendor"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	DatePurchased string       `json:"datePurchased,omitempty" yaml:"datePurchased,omitempty"`
	RenewalDate   string       `json:"renewalDate" yaml:"renewalDate"`
	Amount        float64      `json:"amount" yaml:"amount"`
	ColorTag      string       `json:"colorTag" yaml:"colorTag"`
	BillingCycle  BillingCycle `json:"billingCycle,omitempty" yaml:"billingCycle,omitempty"`
}

// RecordID implements the controller's record constraint.
func (s Subscription) RecordID() string { return s.ID }

// DueDate is the next renewal date.
func (s Subscription) DueDate() string { return s.RenewalDate }

// Loan is an installment loan with a recurring payment schedule.
type Loan struct {
	ID               string       `json:"id" yaml:"id"`
	Vendor           string       `json:"vendor" yaml:"vendor"`
	Description      string       `json:"description,omitempty" yaml:"description,omitempty"`
	TotalLoanAmount  float64      `json:"totalLoanAmount" yaml:"totalLoanAmount"`
	AmountPaidSoFar  float64      `json:"amountPaidSoFar" yaml:"amountPaidSoFar"`
	PaymentAmount    float64      `json:"paymentAmount" yaml:"paymentAmount"`
	PaymentDate      string       `json:"paymentDate" yaml:"paymentDate"`
	LastPaymentDate  string       `json:"lastPaymentDate,omitempty" yaml:"lastPaymentDate,omitempty"`
	FinalPaymentDate string       `json:"finalPaymentDate,omitempty" yaml:"finalPaymentDate,omitempty"`
	ColorTag         string       `json:"colorTag" yaml:"colorTag"`
	BillingCycle     BillingCycle `json:"billingCycle,omitempty" yaml:"billingCycle,omitempty"`
}

// RecordID implements the controller's record constraint.
func (l Loan) RecordID() string { return l.ID }

// DueDate is the next payment date.
func (l Loan) DueDate() string { return l.PaymentDate }

// LoanDetails holds the derived, never-stored loan figures.
type LoanDetails struct {
	RemainingBalance float64 `json:"remainingBalance"`
	PaymentProgress  float64 `json:"paymentProgress"` // 0..100
}
