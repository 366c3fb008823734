package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"dayguard/internal/config"
	"dayguard/internal/storage/sqlite"
)

func reportCmd() *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render usage reports from the command line",
	}

	daily := &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Render a daily usage report for a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format("2006-01-02")
			if len(args) == 1 {
				date = args[0]
			}
			return runDailyReport(cmd.Context(), profileID, date)
		},
	}
	daily.Flags().StringVar(&profileID, "profile", "", "profile id")

	weekly := &cobra.Command{
		Use:   "weekly [YYYY-MM-DD]",
		Short: "Render a weekly usage report for a profile (week-start date)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart := mondayOf(time.Now()).Format("2006-01-02")
			if len(args) == 1 {
				weekStart = args[0]
			}
			return runWeeklyReport(cmd.Context(), profileID, weekStart)
		},
	}
	weekly.Flags().StringVar(&profileID, "profile", "", "profile id")

	cmd.AddCommand(daily, weekly)
	return cmd
}

func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

func runDailyReport(ctx context.Context, profileID, date string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.GetDailySummary(ctx, profileID, date)
	if err != nil {
		return err
	}
	if sum == nil {
		color.Yellow("no summary recorded for %s on %s", profileID, date)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Used (seconds)", "Sessions", "Exceptions used"})
	table.Append([]string{
		sum.Date,
		humanize.Comma(sum.TotalSeconds),
		fmt.Sprintf("%d", sum.SessionCount),
		fmt.Sprintf("%d", sum.ExceptionsUsed),
	})
	table.Render()
	return nil
}

func runWeeklyReport(ctx context.Context, profileID, weekStart string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.GetWeeklySummary(ctx, profileID, weekStart)
	if err != nil {
		return err
	}
	if sum == nil {
		color.Yellow("no summary recorded for %s, week of %s", profileID, weekStart)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Week of", "Used (seconds)", "Sessions", "Exceptions used"})
	table.Append([]string{
		sum.WeekStart,
		humanize.Comma(sum.TotalSeconds),
		fmt.Sprintf("%d", sum.SessionCount),
		fmt.Sprintf("%d", sum.ExceptionsUsed),
	})
	table.Render()
	return nil
}
