package commands

import (
	"fmt"
	"time"

	"github.com/penwyp/go-focus-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	reportDate  string
	reportMonth string

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Aggregated activity reports",
	}

	reportDayCmd = &cobra.Command{
		Use:   "day",
		Short: "Per-app breakdown for one day",
		RunE:  runReportDay,
	}

	reportWeekCmd = &cobra.Command{
		Use:   "week",
		Short: "Daily summaries for the last seven days",
		RunE:  runReportWeek,
	}

	reportMonthCmd = &cobra.Command{
		Use:   "month",
		Short: "Daily summaries for a calendar month",
		RunE:  runReportMonth,
	}

	reportAppCmd = &cobra.Command{
		Use:   "app <name>",
		Short: "Drill-down for one application",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportApp,
	}

	reportTimelineCmd = &cobra.Command{
		Use:   "timeline",
		Short: "Chronological session list for one day",
		RunE:  runReportTimeline,
	}

	reportProjectsCmd = &cobra.Command{
		Use:   "projects",
		Short: "Assigned time grouped by brand and project for one day",
		RunE:  runReportProjects,
	}
)

func init() {
	reportCmd.PersistentFlags().StringVar(&reportDate, "date", "",
		"Date to report on (YYYY-MM-DD, default today)")
	reportMonthCmd.Flags().StringVar(&reportMonth, "month", "",
		"Month to report on (YYYY-MM, default current month)")

	reportCmd.AddCommand(reportDayCmd, reportWeekCmd, reportMonthCmd,
		reportAppCmd, reportTimelineCmd, reportProjectsCmd)
	rootCmd.AddCommand(reportCmd)
}

// resolveDate validates --date or falls back to today.
func resolveDate() (string, error) {
	if reportDate == "" {
		return util.GetTimeProvider().Today(), nil
	}
	if _, err := util.GetTimeProvider().ParseDate(reportDate); err != nil {
		return "", err
	}
	return reportDate, nil
}

func runReportDay(cmd *cobra.Command, args []string) error {
	date, err := resolveDate()
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.QueryDay(date)
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatDay(summary)
}

func runReportWeek(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	days, err := db.QueryWeek()
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatDays(days)
}

func runReportMonth(cmd *cobra.Command, args []string) error {
	now := util.GetTimeProvider().Now()
	year, month := now.Year(), now.Month()
	if reportMonth != "" {
		parsed, err := time.Parse("2006-01", reportMonth)
		if err != nil {
			return fmt.Errorf("invalid month '%s': expected YYYY-MM", reportMonth)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	days, err := db.QueryMonth(year, month)
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatDays(days)
}

func runReportApp(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.QueryApp(args[0])
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatApp(report)
}

func runReportTimeline(cmd *cobra.Command, args []string) error {
	date, err := resolveDate()
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.QueryTimeline(date)
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatTimeline(date, records)
}

func runReportProjects(cmd *cobra.Command, args []string) error {
	date, err := resolveDate()
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	brands, err := db.QueryDayByProject(date)
	if err != nil {
		return err
	}
	f, err := newFormatter()
	if err != nil {
		return err
	}
	return f.FormatProjects(date, brands)
}
