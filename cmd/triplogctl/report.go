package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"triplog/internal/analytics"
	"triplog/internal/core"
	"triplog/internal/report"
)

func summaryCmd(opts *options) *cobra.Command {
	var (
		period   periodFlags
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, category breakdown and mileage for a period",
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
			now := ledger.Now()
			rng := p.Range(now)
			lines := analytics.FilterByCategory(c.Lines(), cat)
			summary := analytics.Summarize(lines, rng)
			comparison := analytics.CompareMonths(lines, now)
			mileage := analytics.SummarizeMileage(c.Mileage, rng)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					Summary    analytics.Summary         `json:"summary"`
					Comparison analytics.MonthComparison `json:"comparison"`
					Mileage    analytics.MileageSummary  `json:"mileage"`
				}{summary, comparison, mileage})
			}

			fmt.Fprintf(out, "Period: %s (%s)\n", p, rng)
			fmt.Fprintf(out, "Total: $%s over %d records, average $%s\n",
				core.FormatAmount(summary.Total), summary.Count, core.FormatAmount(summary.Average))
			if summary.TopCategory != "" {
				fmt.Fprintf(out, "Top category: %s\n", summary.TopCategory)
			}
			fmt.Fprintf(out, "This month vs last: $%s vs $%s (%s%%)\n",
				core.FormatAmount(comparison.Current), core.FormatAmount(comparison.Previous), comparison.Delta.StringFixed(1))
			fmt.Fprintf(out, "Mileage: %d trips, %s miles, $%s\n\n",
				mileage.Trips, mileage.Distance, core.FormatAmount(mileage.Amount))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tCOUNT\tAMOUNT\tSHARE")
			for _, b := range summary.Breakdown {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s%%\n", b.Category, b.Count, core.FormatAmount(b.Amount), b.Percentage.StringFixed(1))
			}
			return w.Flush()
		},
	}
	period.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	var (
		period   periodFlags
		category string
		out      string
	)
	cmd := &cobra.Command{
		Use:       "report <csv|tax>",
		Short:     "Export a CSV table or a plain-text tax report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(report.KindDelimited), string(report.KindTax)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := report.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown report kind %q", args[0])
			}
			p, err := period.resolve()
			if err != nil {
				return err
			}
			cat, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}

			ledger, cfg, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			savings, err := cfg.SavingsRate()
			if err != nil {
				return err
			}
			c, err := ledger.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			now := ledger.Now()
			rng := p.Range(now)
			body := report.Render(kind, analytics.FilterByCategory(c.Lines(), cat), report.TaxOptions{
				Range:       rng,
				Now:         now,
				SavingsRate: &savings,
			})

			switch out {
			case "-":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
				return err
			case "":
				out = report.FileName(kind, rng)
			}
			if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	period.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout, "" for the default file name`)
	return cmd
}

func ratesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the configured mileage rate table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tRATE")
			for _, yr := range ledger.Rates().Entries() {
				fmt.Fprintf(w, "%d\t%s\n", yr.Year, yr.Rate)
			}
			return w.Flush()
		},
	}
}
