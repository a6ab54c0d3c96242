package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/core"
	"fintrack/internal/penalty"
)

func newPenaltyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "penalty",
		Short: "Due date, late penalty and total payable of a traffic fine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := asOf(v)
			if err != nil {
				return err
			}
			issued, err := optionalDate(v, "violation-date", core.Date{})
			if err != nil {
				return err
			}
			due, err := optionalDate(v, "due-date", core.Date{})
			if err != nil {
				return err
			}
			status := core.Status(v.GetString("status"))
			if err := status.Validate(); err != nil {
				return err
			}
			a, err := penalty.Assess(core.Violation{
				FineAmount:    core.MoneyFromFloat(v.GetFloat64("fine")),
				ViolationDate: issued,
				DueDate:       due,
				ReminderDays:  v.GetInt("reminder-days"),
				Status:        status,
			}, today)
			if err != nil {
				return err
			}
			return render(cmd, v, a, func(w io.Writer) {
				line(w, "Due date", a.DueDate.String())
				line(w, "Remind on", a.ReminderDate.String())
				line(w, "Fine", inr(a.Fine))
				line(w, "Penalty", inr(a.Penalty))
				line(w, "Total payable", inr(a.TotalPayable))
				if a.Overdue {
					line(w, "Overdue by", fmt.Sprintf("%d days", -a.DaysRemaining))
				} else {
					line(w, "Days remaining", fmt.Sprint(a.DaysRemaining))
				}
			})
		},
	}
	cmd.Flags().Float64("fine", 0, "fine amount in rupees")
	cmd.Flags().String("violation-date", "", "date of the violation YYYY-MM-DD")
	cmd.Flags().String("due-date", "", "payment due date YYYY-MM-DD (default: derived from the violation date)")
	cmd.Flags().Int("reminder-days", 0, "days before the due date to be reminded")
	cmd.Flags().String("status", "", "Pending, Paid or Cancelled (default Pending)")
	return cmd
}

func newExpiryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expiry KIND=YYYY-MM-DD...",
		Short:   "Classify vehicle documents by how soon they expire",
		Example: `  fincalc expiry "Vehicle Insurance=2024-06-15" "Pollution Certificate=2024-09-01"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := asOf(v)
			if err != nil {
				return err
			}
			docs, err := parseDocuments(args, v.GetString("vehicle"))
			if err != nil {
				return err
			}
			alerts := penalty.CheckDocuments(docs, today)
			if alerts == nil {
				alerts = []penalty.Alert{}
			}
			return render(cmd, v, alerts, func(w io.Writer) {
				if len(alerts) == 0 {
					fmt.Fprintln(w, "No documents need attention.")
					return
				}
				for _, a := range alerts {
					fmt.Fprintf(w, "%-9s %-26s %s (%d days)\n", a.Status, a.Kind, a.ExpiryDate, a.DaysLeft)
				}
			})
		},
	}
	cmd.Flags().String("vehicle", "", "vehicle number the documents belong to")
	return cmd
}

func parseDocuments(args []string, vehicle string) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(args))
	for i, arg := range args {
		kind, date, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(kind) == "" {
			return nil, core.Invalidf("document %q: want KIND=YYYY-MM-DD", arg)
		}
		expiry, err := core.ParseDate(strings.TrimSpace(date))
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", arg, err)
		}
		docs = append(docs, core.Document{
			ID:            fmt.Sprintf("doc-%d", i+1),
			VehicleNumber: vehicle,
			Kind:          core.DocumentKind(strings.TrimSpace(kind)),
			ExpiryDate:    expiry,
		})
	}
	return docs, nil
}
