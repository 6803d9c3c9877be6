package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"triplog/internal/analytics"
	"triplog/internal/core"
)

func addCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense or a trip from flags",
	}
	cmd.AddCommand(addExpenseCmd(opts), addMileageCmd(opts))
	return cmd
}

func addExpenseCmd(opts *options) *cobra.Command {
	var (
		in                     core.ExpenseInput
		amount, category, date string
	)
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Add an expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Amount, err = core.ParseAmount(amount); err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			if in.Category, err = core.ParseCategory(category); err != nil {
				return fmt.Errorf("--category: %w", err)
			}
			if date != "" {
				if in.Date, err = core.ParseDate(date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			e, warnings, err := ledger.AddExpense(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added expense %s: %s %s\n", e.ID, e.Title, core.FormatAmount(e.Amount))
			for _, w := range warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "expense title")
	f.StringVar(&amount, "amount", "", "amount in dollars")
	f.StringVar(&category, "category", string(core.Miscellaneous), "expense category")
	f.StringVar(&date, "date", "", "date (YYYY-MM-DD, default today)")
	f.StringVar(&in.BusinessPurpose, "purpose", "", "business purpose")
	f.StringVar(&in.Location, "location", "", "location")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Attendees, "attendees", "", "attendees")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func addMileageCmd(opts *options) *cobra.Command {
	var (
		in               core.MileageInput
		start, end, date string
	)
	cmd := &cobra.Command{
		Use:   "mileage",
		Short: "Add a trip from odometer readings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.StartOdometer, err = decimal.NewFromString(start); err != nil {
				return fmt.Errorf("--start-odometer: %w", err)
			}
			if in.EndOdometer, err = decimal.NewFromString(end); err != nil {
				return fmt.Errorf("--end-odometer: %w", err)
			}
			if date != "" {
				if in.Date, err = core.ParseDate(date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			m, err := ledger.AddMileage(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added trip %s: %s to %s, %s miles at %s = %s\n",
				m.ID, m.StartLocation, m.EndLocation, m.Distance, m.Rate, core.FormatAmount(m.Amount))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start-odometer", "", "odometer at departure")
	f.StringVar(&end, "end-odometer", "", "odometer at arrival")
	f.StringVar(&in.StartLocation, "from", "", "start location")
	f.StringVar(&in.EndLocation, "to", "", "end location")
	f.StringVar(&date, "date", "", "date (YYYY-MM-DD, default today)")
	f.StringVar(&in.BusinessPurpose, "purpose", "", "business purpose")
	f.StringVar(&in.ClientName, "client", "", "client name")
	f.StringVar(&in.Attendees, "attendees", "", "attendees")
	f.StringVar(&in.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("start-odometer")
	_ = cmd.MarkFlagRequired("end-odometer")
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	var (
		period   periodFlags
		category string
		kind     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records in a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := period.resolve()
			if err != nil {
				return err
			}
			cat, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}

			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			c, err := ledger.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			lines := analytics.FilterByPeriod(c.Lines(), p, ledger.Now())
			lines = analytics.FilterByCategory(lines, cat)
			if kind != "" {
				lines = analytics.FilterByKind(lines, core.RecordKind(kind))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tDATE\tTITLE\tCATEGORY\tAMOUNT")
			for _, l := range lines {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.ID, l.Kind, l.Date, l.Title, l.Category, core.FormatAmount(l.Amount))
			}
			return w.Flush()
		},
	}
	period.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&kind, "kind", "", "only expense or mileage records")
	return cmd
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "delete <expense|mileage> <id>",
		Short:     "Delete a record by id",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(core.KindExpense), string(core.KindMileage)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			switch core.RecordKind(args[0]) {
			case core.KindExpense:
				err = ledger.DeleteExpense(cmd.Context(), args[1])
			case core.KindMileage:
				err = ledger.DeleteMileage(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown record kind %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])
			return nil
		},
	}
}
