package budget

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func rs(rupees int64) core.Money { return core.Money{Cents: rupees * 100} }

func june() (core.Date, core.Date) { return MonthPeriod(2024, 6) }

func sampleTransactions() []Transaction {
	return []Transaction{
		{Amount: rs(500), Category: "Food", Date: core.NewDate(2024, 6, 1)},
		{Amount: rs(1500), Category: "Food", Date: core.NewDate(2024, 6, 10)},
		{Amount: rs(3000), Category: "Rent", Date: core.NewDate(2024, 6, 10)},
		{Amount: rs(1000), Category: "Travel", Date: core.NewDate(2024, 6, 30)},
		{Amount: rs(900), Category: "Food", Date: core.NewDate(2024, 5, 31)}, // before period
		{Amount: rs(700), Category: "Food", Date: core.NewDate(2024, 7, 1)},  // after period
		{Amount: rs(100), Category: " ", Date: core.NewDate(2024, 6, 15)},
	}
}

func TestAggregateInclusiveBounds(t *testing.T) {
	start, end := june()
	snap, err := Aggregate(Input{Transactions: sampleTransactions(), PeriodStart: start, PeriodEnd: end, AsOf: end})
	if err != nil {
		t.Fatal(err)
	}
	if snap.TotalSpent != rs(6100) || snap.TransactionCount != 5 {
		t.Fatalf("TotalSpent = %v over %d transactions", snap.TotalSpent, snap.TransactionCount)
	}
	if snap.DaysInPeriod != 30 || snap.DaysElapsed != 30 {
		t.Errorf("days = %d/%d", snap.DaysElapsed, snap.DaysInPeriod)
	}
	if snap.TotalBudget != nil || snap.Remaining != nil || snap.Utilization != nil {
		t.Errorf("budget fields should be nil without a budget: %+v", snap)
	}
	if snap.ProjectedSpend != rs(6100) {
		t.Errorf("ProjectedSpend = %v", snap.ProjectedSpend)
	}

	want := []struct {
		name  string
		spent core.Money
	}{{"Rent", rs(3000)}, {"Food", rs(2000)}, {"Travel", rs(1000)}, {Uncategorized, rs(100)}}
	if len(snap.Categories) != len(want) {
		t.Fatalf("categories = %+v", snap.Categories)
	}
	for i, w := range want {
		if snap.Categories[i].Category != w.name || snap.Categories[i].Spent != w.spent {
			t.Errorf("category %d = %+v, want %s %v", i, snap.Categories[i], w.name, w.spent)
		}
	}
}

func TestAggregateBudgets(t *testing.T) {
	start, end := june()
	total := rs(10000)
	snap, err := Aggregate(Input{
		Transactions:    sampleTransactions(),
		PeriodStart:     start,
		PeriodEnd:       end,
		AsOf:            core.NewDate(2024, 6, 10),
		TotalBudget:     &total,
		CategoryBudgets: map[string]core.Money{"Food": rs(4000), "Health": rs(1000)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if *snap.Remaining != rs(3900) || *snap.Utilization != 61 {
		t.Errorf("remaining %v utilization %v", *snap.Remaining, *snap.Utilization)
	}
	// 6100 spent over 10 elapsed days, projected over 30
	if snap.ProjectedSpend != rs(18300) {
		t.Errorf("ProjectedSpend = %v", snap.ProjectedSpend)
	}

	byName := map[string]CategorySummary{}
	for _, c := range snap.Categories {
		byName[c.Category] = c
	}
	food := byName["Food"]
	if food.Utilization == nil || *food.Utilization != 50 || *food.Remaining != rs(2000) {
		t.Errorf("food = %+v", food)
	}
	if rent := byName["Rent"]; rent.Budget != nil || rent.Utilization != nil {
		t.Errorf("rent has no budget, got %+v", rent)
	}
	health, ok := byName["Health"]
	if !ok || health.Spent.Cents != 0 || *health.Utilization != 0 {
		t.Errorf("budgeted category without spending should be listed, got %+v", health)
	}
}

func TestAggregateBudgetKeysAreTrimmed(t *testing.T) {
	start, end := june()
	snap, err := Aggregate(Input{
		Transactions:    sampleTransactions(),
		PeriodStart:     start,
		PeriodEnd:       end,
		CategoryBudgets: map[string]core.Money{"Food ": rs(4000), "  ": rs(200)},
	})
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]CategorySummary{}
	for _, c := range snap.Categories {
		byName[c.Category] = c
	}
	if _, ok := byName["Food "]; ok {
		t.Errorf("untrimmed budget key listed as its own category: %+v", snap.Categories)
	}
	food := byName["Food"]
	if food.Utilization == nil || *food.Utilization != 50 {
		t.Errorf("food = %+v, want 50%% of a 4000 budget", food)
	}
	other := byName[Uncategorized]
	if other.Utilization == nil || *other.Utilization != 50 {
		t.Errorf("uncategorized = %+v, want 50%% of a 200 budget", other)
	}
}

func TestAggregateFirstDayProjection(t *testing.T) {
	start, end := june()
	snap, err := Aggregate(Input{
		Transactions: []Transaction{{Amount: rs(100), Category: "Food", Date: start}},
		PeriodStart:  start,
		PeriodEnd:    end,
		AsOf:         start.AddDays(-3),
	})
	if err != nil {
		t.Fatal(err)
	}
	if snap.DaysElapsed != 1 || snap.ProjectedSpend != rs(3000) {
		t.Errorf("elapsed %d projected %v", snap.DaysElapsed, snap.ProjectedSpend)
	}
}

func TestAggregateZeroBudgetHasNoUtilization(t *testing.T) {
	start, end := june()
	zero := core.Money{}
	snap, err := Aggregate(Input{Transactions: sampleTransactions(), PeriodStart: start, PeriodEnd: end, TotalBudget: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Utilization != nil || *snap.Remaining != rs(-6100) {
		t.Errorf("got utilization %v remaining %v", snap.Utilization, snap.Remaining)
	}
}

func TestAggregateInvalid(t *testing.T) {
	start, end := june()
	if _, err := Aggregate(Input{PeriodStart: end, PeriodEnd: start}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := Aggregate(Input{PeriodEnd: end}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestTopCategoriesAndBiggestDay(t *testing.T) {
	start, end := june()
	txs := sampleTransactions()
	snap, _ := Aggregate(Input{Transactions: txs, PeriodStart: start, PeriodEnd: end})

	top := TopCategories(snap, 2)
	if len(top) != 2 || top[0].Name != "Rent" || top[1].Name != "Food" {
		t.Fatalf("top = %+v", top)
	}
	if top[0].Percent < 49.18 || top[0].Percent > 49.19 {
		t.Errorf("rent share = %v", top[0].Percent)
	}

	day, total, ok := BiggestDay(txs, start, end)
	if !ok || day.String() != "2024-06-10" || total != rs(4500) {
		t.Errorf("BiggestDay = %s %v %v", day, total, ok)
	}
	if _, _, ok := BiggestDay(nil, start, end); ok {
		t.Errorf("expected no biggest day for empty input")
	}
}
