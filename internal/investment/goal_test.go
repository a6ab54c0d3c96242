package investment

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestSizeGoal(t *testing.T) {
	g, err := SizeGoal(120000, 0, 24, core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatal(err)
	}
	if g.RequiredMonthly != 5000 || g.TotalInvested != 120000 || g.ExpectedGains != 0 {
		t.Errorf("got %+v", g)
	}
	if g.TargetDate.String() != "2026-01-31" {
		t.Errorf("TargetDate = %s", g.TargetDate)
	}

	g, err = SizeGoal(1000000, 12, 120, core.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if !g.TargetDate.IsEmpty() {
		t.Errorf("expected empty target date, got %s", g.TargetDate)
	}
	if g.ExpectedGains <= 0 {
		t.Errorf("expected positive gains, got %+v", g)
	}
}

func TestTrackProgress(t *testing.T) {
	start := core.NewDate(2024, 1, 10)
	tests := []struct {
		name        string
		asOf        core.Date
		wantElapsed int
		wantPercent float64
		wantMatured bool
	}{
		{"before start", core.NewDate(2023, 12, 1), 0, 0, false},
		{"same month", core.NewDate(2024, 1, 31), 0, 0, false},
		{"six months", core.NewDate(2024, 7, 1), 6, 50, false},
		{"past maturity", core.NewDate(2026, 3, 1), 12, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := TrackProgress(1000, 0, 12, 0, start, tt.asOf)
			if err != nil {
				t.Fatal(err)
			}
			if p.MonthsElapsed != tt.wantElapsed || p.PercentComplete != tt.wantPercent || p.Matured != tt.wantMatured {
				t.Errorf("got %+v", p)
			}
			if p.AmountInvested != float64(tt.wantElapsed)*1000 {
				t.Errorf("AmountInvested = %v", p.AmountInvested)
			}
			if p.MaturityDate.String() != "2025-01-10" {
				t.Errorf("MaturityDate = %s", p.MaturityDate)
			}
		})
	}
}

func TestTrackProgressNeedsDates(t *testing.T) {
	if _, err := TrackProgress(1000, 10, 12, 0, core.Date{}, core.NewDate(2024, 1, 1)); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestEvaluatePosition(t *testing.T) {
	p, err := EvaluatePosition(10, 200, 250)
	if err != nil {
		t.Fatal(err)
	}
	if p.Invested != 2000 || p.CurrentValue != 2500 || p.GainLoss != 500 || p.GainLossPercent != 25 {
		t.Errorf("got %+v", p)
	}

	p, _ = EvaluatePosition(4, 100, 75)
	if p.GainLoss != -100 || p.GainLossPercent != -25 {
		t.Errorf("loss case got %+v", p)
	}

	if _, err := EvaluatePosition(0, 100, 75); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
