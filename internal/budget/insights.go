package budget

import (
	"fintrack/internal/core"
)

// MonthPeriod returns the first and last day of a calendar month.
func MonthPeriod(year, month int) (start, end core.Date) {
	start = core.NewDate(year, month, 1)
	return start, core.NewDate(year, month, core.DaysInMonth(year, month))
}

// FromExpenses converts stored expenses into transactions.
func FromExpenses(expenses []core.Expense) []Transaction {
	out := make([]Transaction, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, Transaction{Amount: e.Amount, Category: e.Category, Date: e.Date})
	}
	return out
}

// TopCategories returns the n categories with the highest spend and their
// share of the total.
func TopCategories(s Snapshot, n int) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, min(n, len(s.Categories)))
	for _, cs := range s.Categories {
		if len(out) == n {
			break
		}
		if cs.Spent.Cents <= 0 {
			continue
		}
		var pct float64
		if s.TotalSpent.Cents > 0 {
			pct = float64(cs.Spent.Cents) * 100 / float64(s.TotalSpent.Cents)
		}
		out = append(out, core.CategoryAmount{Name: cs.Category, Amount: cs.Spent, Percent: pct})
	}
	return out
}

// BiggestDay returns the day with the largest total spend within the period.
// Ties go to the earlier day. ok is false when no transaction falls in the
// period.
func BiggestDay(txs []Transaction, start, end core.Date) (day core.Date, total core.Money, ok bool) {
	perDay := map[string]core.Money{}
	dates := map[string]core.Date{}
	for _, tx := range txs {
		if tx.Date.Within(start, end) {
			key := tx.Date.String()
			perDay[key] = perDay[key].Add(tx.Amount)
			dates[key] = tx.Date
		}
	}
	for key, amt := range perDay {
		d := dates[key]
		if !ok || amt.Cents > total.Cents || (amt.Cents == total.Cents && d.Before(day)) {
			day, total, ok = d, amt, true
		}
	}
	return day, total, ok
}
