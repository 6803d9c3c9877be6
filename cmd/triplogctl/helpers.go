package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"triplog/internal/analytics"
	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/voice"
)

func levelOrWarn(s string) slog.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// periodFlags adds --period, --from and --to. --from/--to win over --period.
type periodFlags struct {
	period string
	from   string
	to     string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.period, "period", "current-month", "current-month, last-month, quarter, year or START..END")
	cmd.Flags().StringVar(&p.from, "from", "", "custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.to, "to", "", "custom range end (YYYY-MM-DD)")
}

func (p *periodFlags) resolve() (analytics.Period, error) {
	if p.from == "" && p.to == "" {
		return analytics.ParsePeriod(p.period)
	}
	start, err := core.ParseDate(p.from)
	if err != nil {
		return analytics.Period{}, fmt.Errorf("--from: %w", err)
	}
	end, err := core.ParseDate(p.to)
	if err != nil {
		return analytics.Period{}, fmt.Errorf("--to: %w", err)
	}
	return analytics.CustomPeriod(start, end)
}

func parseCategoryFlag(s string) (core.Category, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseCategory(s)
}

// intentAndText splits "<intent> words..." command arguments.
func intentAndText(args []string) (voice.Intent, string, error) {
	intent, err := voice.ParseIntent(args[0])
	if err != nil {
		return "", "", err
	}
	return intent, strings.Join(args[1:], " "), nil
}
