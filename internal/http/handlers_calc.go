package http

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"slices"

	"github.com/goccy/go-json"

	"fintrack/internal/amortization"
	"fintrack/internal/budget"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/investment"
	"fintrack/internal/penalty"
	"fintrack/internal/services"
	"fintrack/internal/tax"
)

// calcHandler decodes a calculator request, serves it from the cache when
// possible and otherwise computes and stores the encoded result. Keys include
// as_of because several results depend on the day they are asked for.
func calcHandler[Req any, Res any](s *Server, name string, compute func(Req, core.Date) (Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		asOf, err := s.asOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		key, err := calcKey(name, asOf, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		body, hit, err := cache.Remember(r.Context(), s.calcCache, key, func() ([]byte, error) {
			res, err := compute(req, asOf)
			if err != nil {
				return nil, err
			}
			return json.Marshal(res)
		})
		s.calcLog.LogCalculation(r.Context(), name, hit)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		writeRaw(w, http.StatusOK, body)
	}
}

// calcKey is name:as_of:sha256 of the re-encoded request, so formatting
// differences in the body do not split the cache.
func calcKey(name string, asOf core.Date, req any) (string, error) {
	canonical, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return name + ":" + asOf.String() + ":" + hex.EncodeToString(sum[:]), nil
}

type loanRequest struct {
	Principal    float64 `json:"principal"`
	AnnualRate   float64 `json:"annual_rate"`
	TenureMonths int     `json:"tenure_months"`
}

type payoffRequest struct {
	loanRequest
	ExtraMonthly float64 `json:"extra_monthly"`
}

type scheduleResponse struct {
	Summary amortization.Summary `json:"summary"`
	Rows    []amortization.Row   `json:"rows"`
}

func (s *Server) calcEMI(req loanRequest, _ core.Date) (amortization.Summary, error) {
	return amortization.Summarize(req.Principal, req.AnnualRate, req.TenureMonths)
}

func (s *Server) calcSchedule(req loanRequest, _ core.Date) (scheduleResponse, error) {
	summary, err := amortization.Summarize(req.Principal, req.AnnualRate, req.TenureMonths)
	if err != nil {
		return scheduleResponse{}, err
	}
	rows, err := amortization.Rows(req.Principal, req.AnnualRate, req.TenureMonths)
	if err != nil {
		return scheduleResponse{}, err
	}
	return scheduleResponse{Summary: summary, Rows: rows}, nil
}

func (s *Server) calcPayoff(req payoffRequest, _ core.Date) (amortization.EarlyPayoffResult, error) {
	return amortization.EarlyPayoff(req.Principal, req.AnnualRate, req.TenureMonths, req.ExtraMonthly)
}

type sipRequest struct {
	MonthlyAmount float64 `json:"monthly_amount"`
	AnnualRate    float64 `json:"annual_rate"`
	Months        int     `json:"months"`
}

type stepUpRequest struct {
	sipRequest
	StepUpPercent float64 `json:"step_up_percent"`
	Contributions bool    `json:"contributions,omitempty"`
}

type stepUpResponse struct {
	investment.Projection
	Contributions []investment.Contribution `json:"contributions,omitempty"`
}

type goalRequest struct {
	Target     float64   `json:"target"`
	AnnualRate float64   `json:"annual_rate"`
	Months     int       `json:"months"`
	StartDate  core.Date `json:"start_date"`
}

func (s *Server) calcSIP(req sipRequest, _ core.Date) (investment.Projection, error) {
	return investment.ProjectSIP(req.MonthlyAmount, req.AnnualRate, req.Months)
}

func (s *Server) calcStepUp(req stepUpRequest, _ core.Date) (stepUpResponse, error) {
	p, err := investment.ProjectStepUpSIP(req.MonthlyAmount, req.AnnualRate, req.Months, req.StepUpPercent)
	if err != nil {
		return stepUpResponse{}, err
	}
	resp := stepUpResponse{Projection: p}
	if req.Contributions {
		seq, err := investment.Contributions(req.MonthlyAmount, req.AnnualRate, req.Months, req.StepUpPercent)
		if err != nil {
			return stepUpResponse{}, err
		}
		resp.Contributions = slices.Collect(seq)
	}
	return resp, nil
}

// calcGoal starts contributions on as_of unless the request names a start date.
func (s *Server) calcGoal(req goalRequest, asOf core.Date) (investment.GoalSizing, error) {
	start := req.StartDate
	if start.IsEmpty() {
		start = asOf
	}
	return investment.SizeGoal(req.Target, req.AnnualRate, req.Months, start)
}

type taxRequest struct {
	TaxableIncome float64 `json:"taxable_income"`
	Deductions    float64 `json:"deductions"`
	// RatePercent overrides the bracket lookup when set.
	RatePercent *float64      `json:"rate_percent,omitempty"`
	Brackets    []tax.Bracket `json:"brackets,omitempty"`
}

type advanceTaxRequest struct {
	FinancialYear string  `json:"financial_year"`
	TotalTax      float64 `json:"total_tax"`
}

type advanceTaxResponse struct {
	FinancialYear string                  `json:"financial_year"`
	Installments  []tax.InstallmentAmount `json:"installments"`
	Next          *tax.Installment        `json:"next,omitempty"`
}

func (s *Server) calcTax(req taxRequest, _ core.Date) (tax.Computation, error) {
	if req.RatePercent != nil {
		return tax.Compute(req.TaxableIncome, *req.RatePercent, req.Deductions)
	}
	brackets := req.Brackets
	if len(brackets) == 0 {
		brackets = tax.OldRegime
	}
	return tax.ComputeWithBrackets(req.TaxableIncome, req.Deductions, brackets)
}

// calcAdvanceTax defaults to the financial year containing as_of.
func (s *Server) calcAdvanceTax(req advanceTaxRequest, asOf core.Date) (advanceTaxResponse, error) {
	start := tax.FinancialYearOf(asOf)
	if req.FinancialYear != "" {
		var err error
		if start, err = tax.ParseFinancialYear(req.FinancialYear); err != nil {
			return advanceTaxResponse{}, err
		}
	}
	schedule := tax.AdvanceTaxSchedule(start)
	amounts, err := tax.InstallmentAmounts(schedule, req.TotalTax)
	if err != nil {
		return advanceTaxResponse{}, err
	}
	resp := advanceTaxResponse{FinancialYear: tax.FormatFinancialYear(start), Installments: amounts}
	if next, ok := tax.NextInstallment(schedule, asOf); ok {
		resp.Next = &next
	}
	return resp, nil
}

type penaltyRequest struct {
	ViolationDate core.Date   `json:"violation_date"`
	FineAmount    core.Money  `json:"fine_amount"`
	DueDate       core.Date   `json:"due_date"`
	ReminderDays  int         `json:"reminder_days"`
	Status        core.Status `json:"status"`
}

func (s *Server) calcPenalty(req penaltyRequest, asOf core.Date) (penalty.Assessment, error) {
	if err := req.Status.Validate(); err != nil {
		return penalty.Assessment{}, err
	}
	return penalty.Assess(core.Violation{
		ViolationDate: req.ViolationDate,
		FineAmount:    req.FineAmount,
		DueDate:       req.DueDate,
		ReminderDays:  req.ReminderDays,
		Status:        req.Status,
	}, asOf)
}

type expiryRequest struct {
	Documents []core.Document `json:"documents"`
}

func (s *Server) calcExpiry(req expiryRequest, asOf core.Date) ([]penalty.Alert, error) {
	alerts := penalty.CheckDocuments(req.Documents, asOf)
	if alerts == nil {
		alerts = []penalty.Alert{}
	}
	return alerts, nil
}

type transactionRequest struct {
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     core.Date  `json:"date"`
}

type budgetRequest struct {
	Transactions    []transactionRequest  `json:"transactions"`
	PeriodStart     core.Date             `json:"period_start"`
	PeriodEnd       core.Date             `json:"period_end"`
	TotalBudget     *core.Money           `json:"total_budget,omitempty"`
	CategoryBudgets map[string]core.Money `json:"category_budgets,omitempty"`
}

type budgetResponse struct {
	budget.Snapshot
	TopCategories []core.CategoryAmount `json:"top_categories"`
	BiggestDay    *services.DaySpend    `json:"biggest_day,omitempty"`
}

// calcBudget aggregates over the calendar month of as_of unless the request
// names both period bounds.
func (s *Server) calcBudget(req budgetRequest, asOf core.Date) (budgetResponse, error) {
	start, end := req.PeriodStart, req.PeriodEnd
	if start.IsEmpty() && end.IsEmpty() {
		start, end = budget.MonthPeriod(asOf.Year(), asOf.Month())
	}
	txs := make([]budget.Transaction, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		txs = append(txs, budget.Transaction{Amount: t.Amount, Category: t.Category, Date: t.Date})
	}

	snap, err := budget.Aggregate(budget.Input{
		Transactions:    txs,
		PeriodStart:     start,
		PeriodEnd:       end,
		AsOf:            asOf,
		TotalBudget:     req.TotalBudget,
		CategoryBudgets: req.CategoryBudgets,
	})
	if err != nil {
		return budgetResponse{}, err
	}
	resp := budgetResponse{Snapshot: snap, TopCategories: budget.TopCategories(snap, services.TopCategoryCount)}
	if day, total, ok := budget.BiggestDay(txs, start, end); ok {
		resp.BiggestDay = &services.DaySpend{Date: day, Amount: total}
	}
	return resp, nil
}
