// Package budget summarises dated spending over a period against optional
// overall and per-category budgets.
package budget

import (
	"cmp"
	"slices"
	"strings"

	"fintrack/internal/core"
)

// Uncategorized collects transactions recorded without a category.
const Uncategorized = "Uncategorized"

// Transaction is a single dated amount.
type Transaction struct {
	Amount   core.Money
	Category string
	Date     core.Date
}

// Input describes one aggregation. AsOf is the day the snapshot is taken and
// drives the spend projection; a zero AsOf means the period is closed.
type Input struct {
	Transactions    []Transaction
	PeriodStart     core.Date
	PeriodEnd       core.Date
	AsOf            core.Date
	TotalBudget     *core.Money
	CategoryBudgets map[string]core.Money
}

// CategorySummary is spending in one category. Budget, Remaining and
// Utilization are nil when no budget was set for the category.
type CategorySummary struct {
	Category    string      `json:"category"`
	Spent       core.Money  `json:"spent"`
	Count       int         `json:"count"`
	Budget      *core.Money `json:"budget,omitempty"`
	Remaining   *core.Money `json:"remaining,omitempty"`
	Utilization *float64    `json:"utilization_percent,omitempty"`
}

// Snapshot is the aggregated state of a budget period.
type Snapshot struct {
	PeriodStart      core.Date         `json:"period_start"`
	PeriodEnd        core.Date         `json:"period_end"`
	DaysInPeriod     int               `json:"days_in_period"`
	DaysElapsed      int               `json:"days_elapsed"`
	TransactionCount int               `json:"transaction_count"`
	TotalSpent       core.Money        `json:"total_spent"`
	TotalBudget      *core.Money       `json:"total_budget,omitempty"`
	Remaining        *core.Money       `json:"remaining,omitempty"`
	Utilization      *float64          `json:"utilization_percent,omitempty"`
	ProjectedSpend   core.Money        `json:"projected_spend"`
	Categories       []CategorySummary `json:"categories"`
}

// Aggregate sums the transactions dated within [PeriodStart, PeriodEnd], both
// ends inclusive. Category totals are always reported; utilization is only
// computed where a positive budget exists.
func Aggregate(in Input) (Snapshot, error) {
	if in.PeriodStart.IsEmpty() || in.PeriodEnd.IsEmpty() {
		return Snapshot{}, core.ErrInvalidDate
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return Snapshot{}, core.ErrInvalidPeriod
	}
	if in.TotalBudget != nil && in.TotalBudget.Cents < 0 {
		return Snapshot{}, core.ErrInvalidAmount
	}

	snap := Snapshot{
		PeriodStart:  in.PeriodStart,
		PeriodEnd:    in.PeriodEnd,
		DaysInPeriod: core.DaysInPeriod(in.PeriodStart, in.PeriodEnd),
		DaysElapsed:  daysElapsed(in),
	}

	byCategory := map[string]*CategorySummary{}
	for _, tx := range in.Transactions {
		if !tx.Date.Within(in.PeriodStart, in.PeriodEnd) {
			continue
		}
		name := categoryName(tx.Category)
		cs, ok := byCategory[name]
		if !ok {
			cs = &CategorySummary{Category: name}
			byCategory[name] = cs
		}
		cs.Spent = cs.Spent.Add(tx.Amount)
		cs.Count++
		snap.TotalSpent = snap.TotalSpent.Add(tx.Amount)
		snap.TransactionCount++
	}

	budgets := make(map[string]core.Money, len(in.CategoryBudgets))
	for name, b := range in.CategoryBudgets {
		name = categoryName(name)
		budgets[name] = budgets[name].Add(b)
	}
	for name, b := range budgets {
		cs, ok := byCategory[name]
		if !ok {
			cs = &CategorySummary{Category: name}
			byCategory[name] = cs
		}
		cs.Budget, cs.Remaining, cs.Utilization = against(b, cs.Spent)
	}

	if in.TotalBudget != nil {
		snap.TotalBudget, snap.Remaining, snap.Utilization = against(*in.TotalBudget, snap.TotalSpent)
	}

	perDay := snap.TotalSpent.Float() / float64(snap.DaysElapsed)
	snap.ProjectedSpend = core.MoneyFromFloat(perDay * float64(snap.DaysInPeriod))

	snap.Categories = make([]CategorySummary, 0, len(byCategory))
	for _, cs := range byCategory {
		snap.Categories = append(snap.Categories, *cs)
	}
	slices.SortFunc(snap.Categories, func(a, b CategorySummary) int {
		if c := cmp.Compare(b.Spent.Cents, a.Spent.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return snap, nil
}

// categoryName trims a category; blank names fall into Uncategorized.
func categoryName(s string) string {
	if name := strings.TrimSpace(s); name != "" {
		return name
	}
	return Uncategorized
}

// daysElapsed counts days from the period start through AsOf, clamped to the
// period and never below one.
func daysElapsed(in Input) int {
	asOf := in.AsOf
	if asOf.IsEmpty() || asOf.After(in.PeriodEnd) {
		asOf = in.PeriodEnd
	}
	return max(core.DaysInPeriod(in.PeriodStart, asOf), 1)
}

func against(budget, spent core.Money) (*core.Money, *core.Money, *float64) {
	b := budget
	remaining := budget.Sub(spent)
	if budget.Cents <= 0 {
		return &b, &remaining, nil
	}
	util := float64(spent.Cents) * 100 / float64(budget.Cents)
	return &b, &remaining, &util
}
