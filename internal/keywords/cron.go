package keywords

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartScheduler runs the keyword generation batch on a standard 5-field
// cron expression (minute hour day-of-month month day-of-week). An empty
// schedule disables it. Examples: "0 3 * * *" (daily 3am), "0 3 * * 1"
// (Mondays 3am).
func StartScheduler(ctx context.Context, runner *Runner, schedule string) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		slog.Info("keyword generation scheduler disabled (no schedule configured)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		slog.Error("invalid keyword generation schedule, scheduler disabled", "schedule", schedule, "error", err)
		return
	}
	slog.Info("keyword generation scheduled", "cron", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			slog.Info("next keyword generation run", "at", next.Format(time.RFC3339), "in", wait.Round(time.Minute).String())

			select {
			case <-ctx.Done():
				slog.Info("keyword generation scheduler stopped")
				return
			case <-time.After(wait):
			}

			if _, err := runner.Run(ctx); err != nil {
				slog.Error("scheduled keyword generation failed", "error", err)
			}
		}
	}()
}
