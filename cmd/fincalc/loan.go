package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/amortization"
)

func loanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("principal", 0, "loan amount in rupees")
	cmd.Flags().Float64("rate", 0, "annual interest rate in percent")
	cmd.Flags().Int("months", 0, "tenure in months")
}

func newEMICmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Monthly installment, total payable and total interest of a loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := amortization.Summarize(v.GetFloat64("principal"), v.GetFloat64("rate"), v.GetInt("months"))
			if err != nil {
				return err
			}
			return render(cmd, v, s, func(w io.Writer) {
				line(w, "EMI", inr(s.EMI))
				line(w, "Total payable", inr(s.TotalPayable))
				line(w, "Total interest", inr(s.TotalInterest))
			})
		},
	}
	loanFlags(cmd)
	return cmd
}

type scheduleOutput struct {
	Summary amortization.Summary `json:"summary"`
	Rows    []amortization.Row   `json:"rows"`
}

func newScheduleCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Month-by-month amortization schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, rate, months := v.GetFloat64("principal"), v.GetFloat64("rate"), v.GetInt("months")
			s, err := amortization.Summarize(principal, rate, months)
			if err != nil {
				return err
			}
			rows, err := amortization.Rows(principal, rate, months)
			if err != nil {
				return err
			}
			return render(cmd, v, scheduleOutput{Summary: s, Rows: rows}, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "Month\tPayment\tPrincipal\tInterest\tBalance\t")
				for _, r := range rows {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", r.Month, inr(r.Payment), inr(r.Principal), inr(r.Interest), inr(r.Balance))
				}
				tw.Flush()
				line(w, "Total interest", inr(s.TotalInterest))
			})
		},
	}
	loanFlags(cmd)
	return cmd
}

func newPayoffCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Effect of paying a fixed extra amount every month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := amortization.EarlyPayoff(v.GetFloat64("principal"), v.GetFloat64("rate"), v.GetInt("months"), v.GetFloat64("extra"))
			if err != nil {
				return err
			}
			return render(cmd, v, res, func(w io.Writer) {
				if res.PaidOff {
					line(w, "Paid off in", fmt.Sprintf("%d months (%d saved)", res.MonthsToPayoff, res.MonthsSaved))
				} else {
					line(w, "Outstanding", inr(res.RemainingBalance))
				}
				line(w, "Interest paid", inr(res.TotalInterestPaid))
				line(w, "Interest saved", inr(res.TotalInterestSaved))
			})
		},
	}
	loanFlags(cmd)
	cmd.Flags().Float64("extra", 0, "extra payment each month in rupees")
	return cmd
}
