package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/investment"
)

func newSIPCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sip",
		Short: "Maturity value of a fixed monthly SIP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := investment.ProjectSIP(v.GetFloat64("amount"), v.GetFloat64("rate"), v.GetInt("months"))
			if err != nil {
				return err
			}
			return render(cmd, v, p, func(w io.Writer) { printProjection(w, p) })
		},
	}
	cmd.Flags().Float64("amount", 0, "monthly contribution in rupees")
	cmd.Flags().Float64("rate", 0, "expected annual return in percent")
	cmd.Flags().Int("months", 0, "duration in months")
	return cmd
}

type stepUpOutput struct {
	investment.Projection
	Contributions []investment.Contribution `json:"contributions,omitempty"`
}

func newStepUpCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepup",
		Short: "Maturity value of a SIP whose contribution grows every year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, rate, months, step := v.GetFloat64("amount"), v.GetFloat64("rate"), v.GetInt("months"), v.GetFloat64("step-up")
			p, err := investment.ProjectStepUpSIP(amount, rate, months, step)
			if err != nil {
				return err
			}
			out := stepUpOutput{Projection: p}
			if v.GetBool("contributions") {
				seq, err := investment.Contributions(amount, rate, months, step)
				if err != nil {
					return err
				}
				out.Contributions = slices.Collect(seq)
			}
			return render(cmd, v, out, func(w io.Writer) {
				for _, c := range out.Contributions {
					fmt.Fprintf(w, "month %3d  %14s  -> %s\n", c.Month, inr(c.Amount), inr(c.FutureValue))
				}
				printProjection(w, p)
			})
		},
	}
	cmd.Flags().Float64("amount", 0, "first-year monthly contribution in rupees")
	cmd.Flags().Float64("rate", 0, "expected annual return in percent")
	cmd.Flags().Int("months", 0, "duration in months")
	cmd.Flags().Float64("step-up", 0, "yearly increase of the contribution in percent")
	cmd.Flags().Bool("contributions", false, "list every monthly contribution")
	return cmd
}

func newGoalCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Monthly SIP needed to reach a target amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := asOf(v)
			if err != nil {
				return err
			}
			start, err := optionalDate(v, "start", today)
			if err != nil {
				return err
			}
			g, err := investment.SizeGoal(v.GetFloat64("target"), v.GetFloat64("rate"), v.GetInt("months"), start)
			if err != nil {
				return err
			}
			return render(cmd, v, g, func(w io.Writer) {
				line(w, "Monthly SIP", inr(g.RequiredMonthly))
				line(w, "Total invested", inr(g.TotalInvested))
				line(w, "Expected gains", inr(g.ExpectedGains))
				line(w, "Target date", g.TargetDate.String())
			})
		},
	}
	cmd.Flags().Float64("target", 0, "target amount in rupees")
	cmd.Flags().Float64("rate", 0, "expected annual return in percent")
	cmd.Flags().Int("months", 0, "months until the goal")
	cmd.Flags().String("start", "", "first contribution date YYYY-MM-DD (default: --as-of)")
	return cmd
}

func printProjection(w io.Writer, p investment.Projection) {
	line(w, "Maturity value", inr(p.MaturityValue))
	line(w, "Total invested", inr(p.TotalInvested))
	line(w, "Total gains", inr(p.TotalGains))
}
