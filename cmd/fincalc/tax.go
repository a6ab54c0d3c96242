package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/tax"
)

func newTaxCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Tax on an income before and after deductions",
		Long: `Computes the tax due with and without deductions. Without --rate the
rate is looked up in the old-regime bracket table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			income, deductions := v.GetFloat64("income"), v.GetFloat64("deductions")
			var (
				c   tax.Computation
				err error
			)
			if v.IsSet("rate") {
				c, err = tax.Compute(income, v.GetFloat64("rate"), deductions)
			} else {
				c, err = tax.ComputeWithBrackets(income, deductions, tax.OldRegime)
			}
			if err != nil {
				return err
			}
			return render(cmd, v, c, func(w io.Writer) {
				line(w, "Rate", fmt.Sprintf("%g%%", c.RatePercent))
				line(w, "Tax", inr(c.OriginalTax))
				line(w, "After deductions", inr(c.FinalTax))
				line(w, "Savings", inr(c.Savings))
			})
		},
	}
	cmd.Flags().Float64("income", 0, "taxable income in rupees")
	cmd.Flags().Float64("deductions", 0, "deductions in rupees")
	cmd.Flags().Float64("rate", 0, "flat rate in percent (default: bracket lookup)")
	return cmd
}

type advanceTaxOutput struct {
	FinancialYear string                  `json:"financial_year"`
	Installments  []tax.InstallmentAmount `json:"installments"`
	Next          *tax.Installment        `json:"next,omitempty"`
}

func newAdvanceTaxCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance-tax",
		Short: "Advance-tax installments for a financial year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := asOf(v)
			if err != nil {
				return err
			}
			fy := tax.FinancialYearOf(today)
			if s := v.GetString("fy"); s != "" {
				if fy, err = tax.ParseFinancialYear(s); err != nil {
					return err
				}
			}
			schedule := tax.AdvanceTaxSchedule(fy)
			amounts, err := tax.InstallmentAmounts(schedule, v.GetFloat64("total"))
			if err != nil {
				return err
			}
			out := advanceTaxOutput{FinancialYear: tax.FormatFinancialYear(fy), Installments: amounts}
			if next, ok := tax.NextInstallment(schedule, today); ok {
				out.Next = &next
			}
			return render(cmd, v, out, func(w io.Writer) {
				fmt.Fprintf(w, "Financial year %s\n", out.FinancialYear)
				for _, in := range amounts {
					marker := ""
					if out.Next != nil && out.Next.Quarter == in.Quarter {
						marker = "  <- next"
					}
					fmt.Fprintf(w, "%s  %s  %14s  %14s%s\n", in.Quarter, in.DueDate, inr(in.Payable), inr(in.Cumulative), marker)
				}
			})
		},
	}
	cmd.Flags().Float64("total", 0, "estimated tax for the year in rupees")
	cmd.Flags().String("fy", "", "financial year, e.g. 2024-25 (default: year of --as-of)")
	return cmd
}
