package investment

import (
	"fintrack/internal/core"
)

// GoalSizing is the monthly SIP needed to reach a target by a date.
type GoalSizing struct {
	TargetAmount    float64   `json:"target_amount"`
	RequiredMonthly float64   `json:"required_monthly"`
	TotalInvested   float64   `json:"total_invested"`
	ExpectedGains   float64   `json:"expected_gains"`
	TargetDate      core.Date `json:"target_date"`
}

// SizeGoal computes the required monthly SIP and the date the goal is reached
// when contributions start on start. A zero start leaves TargetDate empty.
func SizeGoal(target, annualRatePercent float64, months int, start core.Date) (GoalSizing, error) {
	monthly, err := RequiredMonthlySIP(target, annualRatePercent, months)
	if err != nil {
		return GoalSizing{}, err
	}
	invested := monthly * float64(months)
	g := GoalSizing{
		TargetAmount:    target,
		RequiredMonthly: monthly,
		TotalInvested:   invested,
		ExpectedGains:   target - invested,
	}
	if !start.IsEmpty() {
		g.TargetDate = start.AddMonths(months)
	}
	return g, nil
}

// Progress is a point-in-time view of a running SIP.
type Progress struct {
	MonthsElapsed   int       `json:"months_elapsed"`
	MonthsRemaining int       `json:"months_remaining"`
	AmountInvested  float64   `json:"amount_invested"`
	EstimatedValue  float64   `json:"estimated_value"`
	PercentComplete float64   `json:"percent_complete"`
	MaturityDate    core.Date `json:"maturity_date"`
	Matured         bool      `json:"matured"`
}

// TrackProgress reports how far a SIP started on start has run as of asOf.
// Elapsed months are calendar months, clamped to [0, months].
func TrackProgress(monthlyAmount, annualRatePercent float64, months int, stepUpPercent float64, start, asOf core.Date) (Progress, error) {
	if err := validate(monthlyAmount, annualRatePercent, months); err != nil {
		return Progress{}, err
	}
	if start.IsEmpty() || asOf.IsEmpty() {
		return Progress{}, core.ErrInvalidDate
	}
	elapsed := min(max(core.MonthsBetween(start, asOf), 0), months)

	p := Progress{
		MonthsElapsed:   elapsed,
		MonthsRemaining: months - elapsed,
		PercentComplete: float64(elapsed) / float64(months) * 100,
		MaturityDate:    start.AddMonths(months),
		Matured:         elapsed == months,
	}
	if elapsed == 0 {
		return p, nil
	}
	sofar, err := ProjectStepUpSIP(monthlyAmount, annualRatePercent, elapsed, stepUpPercent)
	if err != nil {
		return Progress{}, err
	}
	p.AmountInvested = sofar.TotalInvested
	p.EstimatedValue = sofar.MaturityValue
	return p, nil
}

// Position values an equity holding at the user's current price.
type Position struct {
	Invested        float64 `json:"invested"`
	CurrentValue    float64 `json:"current_value"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}

// EvaluatePosition computes profit or loss for quantity shares bought at
// buyPrice and now priced at currentPrice.
func EvaluatePosition(quantity, buyPrice, currentPrice float64) (Position, error) {
	if !(quantity > 0) || !(buyPrice > 0) || !(currentPrice >= 0) {
		return Position{}, core.ErrInvalidAmount
	}
	invested := quantity * buyPrice
	current := quantity * currentPrice
	return Position{
		Invested:        invested,
		CurrentValue:    current,
		GainLoss:        current - invested,
		GainLossPercent: (current - invested) / invested * 100,
	}, nil
}
