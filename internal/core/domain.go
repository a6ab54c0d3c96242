package core

import (
	"errors"
	"strings"
)

// DocumentKind names a regulatory vehicle document tracked for expiry.
type DocumentKind string

const (
	DocDrivingLicense DocumentKind = "Driving License"
	DocInsurance      DocumentKind = "Vehicle Insurance"
	DocRegistration   DocumentKind = "Registration Certificate"
	DocPollution      DocumentKind = "Pollution Certificate"
)

// ReminderKind tells the reminder consumers what a reminder is about.
type ReminderKind string

const (
	ReminderViolation  ReminderKind = "violation_due"
	ReminderAdvanceTax ReminderKind = "advance_tax"
	ReminderDocument   ReminderKind = "document_expiry"
	ReminderLoan       ReminderKind = "loan_due"
	ReminderDebt       ReminderKind = "debt_due"
)

type (
	// Loan is a stored loan. EMI and the totals are derived on save.
	Loan struct {
		ID           string  `json:"id,omitempty"`
		UserID       string  `json:"user_id"`
		Lender       string  `json:"lender"`
		Principal    Money   `json:"principal"`
		AnnualRate   float64 `json:"annual_rate"`
		TenureMonths int     `json:"tenure_months"`
		StartDate    Date    `json:"start_date"`
		DueDate      Date    `json:"due_date"`
		EMI          Money   `json:"emi"`
		TotalPayable Money   `json:"total_payable"`
		Status       Status  `json:"status,omitempty"`
	}

	// SIP is a stored systematic investment plan.
	SIP struct {
		ID             string  `json:"id,omitempty"`
		UserID         string  `json:"user_id"`
		FundName       string  `json:"fund_name"`
		MonthlyAmount  Money   `json:"monthly_amount"`
		AnnualRate     float64 `json:"annual_rate"`
		DurationMonths int     `json:"duration_months"`
		StepUpPercent  float64 `json:"step_up_percent,omitempty"`
		StartDate      Date    `json:"start_date"`
		MaturityValue  Money   `json:"maturity_value"`
		Status         Status  `json:"status,omitempty"`
	}

	// TaxEntry is a stored tax liability for one financial year.
	TaxEntry struct {
		ID              string  `json:"id,omitempty"`
		UserID          string  `json:"user_id"`
		FinancialYear   string  `json:"financial_year"`
		TaxableIncome   Money   `json:"taxable_income"`
		RatePercent     float64 `json:"rate_percent"`
		Deductions      Money   `json:"deductions"`
		TaxAmount       Money   `json:"tax_amount"`
		DueDate         Date    `json:"due_date"`
		Status          Status  `json:"status,omitempty"`
		AdvanceTaxPayer bool    `json:"advance_tax_payer,omitempty"`
	}

	// Violation is a stored traffic fine.
	Violation struct {
		ID            string `json:"id,omitempty"`
		UserID        string `json:"user_id"`
		VehicleNumber string `json:"vehicle_number"`
		Offence       string `json:"offence"`
		Location      string `json:"location,omitempty"`
		FineAmount    Money  `json:"fine_amount"`
		ViolationDate Date   `json:"violation_date"`
		DueDate       Date   `json:"due_date"`
		ReminderDays  int    `json:"reminder_days,omitempty"`
		Status        Status `json:"status,omitempty"`
	}

	// Document is a vehicle document with an optional expiry date.
	Document struct {
		ID            string       `json:"id,omitempty"`
		UserID        string       `json:"user_id"`
		VehicleNumber string       `json:"vehicle_number"`
		Kind          DocumentKind `json:"kind"`
		Number        string       `json:"number,omitempty"`
		ExpiryDate    Date         `json:"expiry_date"`
	}

	Expense struct {
		ID          string `json:"id,omitempty"`
		UserID      string `json:"user_id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		PaymentMode string `json:"payment_mode,omitempty"`
	}

	// Debt is money the user owes to someone else.
	Debt struct {
		ID       string `json:"id,omitempty"`
		UserID   string `json:"user_id"`
		Creditor string `json:"creditor"`
		Amount   Money  `json:"amount"`
		DueDate  Date   `json:"due_date"`
		Status   Status `json:"status,omitempty"`
		Note     string `json:"note,omitempty"`
	}

	// Stock is a stored equity holding with prices entered by the user.
	Stock struct {
		ID           string  `json:"id,omitempty"`
		UserID       string  `json:"user_id"`
		Symbol       string  `json:"symbol"`
		Quantity     float64 `json:"quantity"`
		BuyPrice     float64 `json:"buy_price"`
		CurrentPrice float64 `json:"current_price"`
		Status       Status  `json:"status,omitempty"`
	}

	// Reminder is a notification derived from a stored record. Key is stable
	// across scans so the same reminder is created only once.
	Reminder struct {
		ID       string       `json:"id,omitempty"`
		UserID   string       `json:"user_id"`
		Kind     ReminderKind `json:"kind"`
		RecordID string       `json:"record_id"`
		Key      string       `json:"key"`
		DueDate  Date         `json:"due_date"`
		Amount   Money        `json:"amount"`
		Message  string       `json:"message,omitempty"`
	}

	// Budget is the spending limit a user sets for one calendar month.
	// Categories holds optional per-category limits.
	Budget struct {
		UserID     string           `json:"user_id"`
		Year       int              `json:"year"`
		Month      int              `json:"month"`
		Total      Money            `json:"total"`
		Categories map[string]Money `json:"categories,omitempty"`
	}
)

func requireText(v string, err error) error {
	if strings.TrimSpace(v) == "" {
		return err
	}
	if len(v) > 200 {
		return Invalidf("text too long (max 200 characters)")
	}
	return nil
}

func (l Loan) Validate() error {
	if err := requireText(l.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(l.Lender, ErrEmptyDescription); err != nil {
		return err
	}
	if err := l.Principal.Validate(); err != nil {
		return err
	}
	if l.AnnualRate < 0 {
		return ErrInvalidRate
	}
	if l.TenureMonths < 1 {
		return ErrInvalidTenure
	}
	return l.Status.Validate()
}

func (s SIP) Validate() error {
	if err := requireText(s.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(s.FundName, ErrEmptyDescription); err != nil {
		return err
	}
	if err := s.MonthlyAmount.Validate(); err != nil {
		return err
	}
	if s.AnnualRate < 0 || s.StepUpPercent < 0 {
		return ErrInvalidRate
	}
	if s.DurationMonths < 1 {
		return ErrInvalidTenure
	}
	return s.Status.Validate()
}

func (t TaxEntry) Validate() error {
	if err := requireText(t.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(t.FinancialYear, Invalidf("empty financial year")); err != nil {
		return err
	}
	if err := t.TaxableIncome.Validate(); err != nil {
		return err
	}
	if t.Deductions.Cents < 0 {
		return ErrInvalidAmount
	}
	if t.RatePercent < 0 {
		return ErrInvalidRate
	}
	return t.Status.Validate()
}

func (v Violation) Validate() error {
	if err := requireText(v.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(v.VehicleNumber, Invalidf("empty vehicle number")); err != nil {
		return err
	}
	if err := v.FineAmount.Validate(); err != nil {
		return err
	}
	if v.ViolationDate.IsZero() {
		return ErrInvalidDate
	}
	if v.ReminderDays < 0 {
		return Invalidf("reminder days must not be negative")
	}
	return v.Status.Validate()
}

func (d Document) Validate() error {
	if err := requireText(d.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(string(d.Kind), Invalidf("empty document kind")); err != nil {
		return err
	}
	return nil
}

func (e Expense) Validate() error {
	if err := requireText(e.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return errors.Join(ErrInvalidDate, err)
	}
	if err := requireText(e.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return requireText(e.Category, ErrEmptyCategory)
}

func (d Debt) Validate() error {
	if err := requireText(d.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(d.Creditor, ErrEmptyDescription); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	return d.Status.Validate()
}

func (s Stock) Validate() error {
	if err := requireText(s.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(s.Symbol, Invalidf("empty symbol")); err != nil {
		return err
	}
	if s.Quantity <= 0 || s.BuyPrice <= 0 || s.CurrentPrice < 0 {
		return ErrInvalidAmount
	}
	return s.Status.Validate()
}

func (b Budget) Validate() error {
	if err := requireText(b.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return Invalidf("month %d out of range", b.Month)
	}
	if b.Year < 1900 || b.Year > 9999 {
		return ErrInvalidDate
	}
	if b.Total.Cents < 0 {
		return ErrInvalidAmount
	}
	for name, limit := range b.Categories {
		if err := requireText(name, ErrEmptyCategory); err != nil {
			return err
		}
		if limit.Cents < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (r Reminder) Validate() error {
	if err := requireText(r.UserID, ErrEmptyUser); err != nil {
		return err
	}
	if err := requireText(string(r.Kind), Invalidf("empty reminder kind")); err != nil {
		return err
	}
	return requireText(r.Key, Invalidf("empty reminder key"))
}
