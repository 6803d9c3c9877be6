package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"triplog/internal/storage"
	"triplog/internal/voice"
)

func parseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <intent> <transcript...>",
		Short: "Show the draft a transcript would produce without saving it",
		Long: fmt.Sprintf(`Parse a transcript for one of the intents %v and print the
resulting draft and the fields still missing.`, voice.Intents()),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, text, err := intentAndText(args)
			if err != nil {
				return err
			}
			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			res, err := ledger.Preview(cmd.Context(), text, intent)
			if err != nil {
				return fmt.Errorf("%s: %w", res.Confirmation, err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func captureCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <intent> <transcript...>",
		Short: "Parse a transcript and save the resulting record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, text, err := intentAndText(args)
			if err != nil {
				return err
			}
			ledger, _, err := openLedger(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ledger.Close()

			res, err := ledger.CaptureVoice(cmd.Context(), text, intent)
			if err != nil {
				if res.Draft != nil {
					_ = printJSON(cmd.ErrOrStderr(), res.Draft)
				}
				return fmt.Errorf("%s: %w", res.Confirmation, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Confirmation)
			for _, w := range res.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			var raw []byte
			switch {
			case res.Expense != nil:
				raw, err = storage.EncodeExpense(*res.Expense)
			case res.Mileage != nil:
				raw, err = storage.EncodeMileage(*res.Mileage)
			}
			if err != nil {
				return err
			}
			return printJSON(out, json.RawMessage(raw))
		},
	}
}
