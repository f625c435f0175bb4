package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// QueryDay aggregates one calendar day. Apps with zero time are excluded and
// the breakdown is sorted by total descending. The summary's TotalSeconds is
// by construction the sum of that day's record durations.
func (s *Store) QueryDay(date string) (*model.DaySummary, error) {
	summary := &model.DaySummary{Date: date}

	query, args, err := sq.Select("app_name", "SUM(duration_seconds) AS total").
		From("activities").
		Where(sq.Eq{"date": date}).
		GroupBy("app_name").
		Having("total > 0").
		OrderBy("total DESC", "app_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build day query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var app model.AppTotal
		if err := rows.Scan(&app.AppName, &app.TotalSeconds); err != nil {
			return nil, fmt.Errorf("scan app total: %w", err)
		}
		summary.Apps = append(summary.Apps, app)
		summary.TotalSeconds += app.TotalSeconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day: %w", err)
	}

	if summary.TotalSeconds == 0 {
		return summary, nil
	}

	if err := s.fillDayEdges(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// fillDayEdges populates first/last activity labels and the wall-clock span,
// which runs from the first activity start to the last activity end.
func (s *Store) fillDayEdges(summary *model.DaySummary) error {
	var firstTs, lastEnd int64

	firstQuery, args, err := sq.Select("app_name", "timestamp").
		From("activities").
		Where(sq.Eq{"date": summary.Date}).
		OrderBy("timestamp ASC", "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("build first activity query: %w", err)
	}
	if err := s.db.QueryRow(firstQuery, args...).Scan(&summary.FirstApp, &firstTs); err != nil {
		return fmt.Errorf("query first activity: %w", err)
	}
	summary.FirstSeen = time.Unix(firstTs, 0)

	lastQuery, args, err := sq.Select("app_name", "timestamp + duration_seconds").
		From("activities").
		Where(sq.Eq{"date": summary.Date}).
		OrderBy("timestamp + duration_seconds DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("build last activity query: %w", err)
	}
	if err := s.db.QueryRow(lastQuery, args...).Scan(&summary.LastApp, &lastEnd); err != nil {
		return fmt.Errorf("query last activity: %w", err)
	}
	summary.LastSeen = time.Unix(lastEnd, 0)
	summary.WallClockSeconds = int(lastEnd - firstTs)

	return nil
}

// QueryWeek returns summaries for the last seven calendar days ending today.
// Days with zero activity are omitted, not zero-filled.
func (s *Store) QueryWeek() ([]model.DaySummary, error) {
	tp := util.GetTimeProvider()
	now := tp.Now()

	var summaries []model.DaySummary
	for i := 6; i >= 0; i-- {
		date := tp.DateOf(now.AddDate(0, 0, -i))
		summary, err := s.QueryDay(date)
		if err != nil {
			return nil, err
		}
		if summary.TotalSeconds > 0 {
			summaries = append(summaries, *summary)
		}
	}
	return summaries, nil
}

// QueryMonth returns summaries for a calendar month, capped at today. Days
// with zero activity are omitted.
func (s *Store) QueryMonth(year int, month time.Month) ([]model.DaySummary, error) {
	tp := util.GetTimeProvider()
	today := tp.Today()

	var summaries []model.DaySummary
	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day.Month() == month {
		date := day.Format(util.DateLayout)
		if date > today {
			break
		}
		summary, err := s.QueryDay(date)
		if err != nil {
			return nil, err
		}
		if summary.TotalSeconds > 0 {
			summaries = append(summaries, *summary)
		}
		day = day.AddDate(0, 0, 1)
	}
	return summaries, nil
}

// topWindowLimit bounds the window breakdown in app detail reports.
const topWindowLimit = 20

// QueryApp builds the drill-down report for one application: total time,
// per-day breakdown, and the top windows bucketed by identical
// (title, URL, context) across sessions.
func (s *Store) QueryApp(appName string) (*model.AppDetailReport, error) {
	report := &model.AppDetailReport{AppName: appName}

	dayQuery, args, err := sq.Select("date", "SUM(duration_seconds) AS total").
		From("activities").
		Where(sq.Eq{"app_name": appName}).
		GroupBy("date").
		Having("total > 0").
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build app days query: %w", err)
	}
	rows, err := s.db.Query(dayQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query app days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day model.DayTotal
		if err := rows.Scan(&day.Date, &day.TotalSeconds); err != nil {
			return nil, fmt.Errorf("scan app day: %w", err)
		}
		report.Days = append(report.Days, day)
		report.TotalSeconds += day.TotalSeconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app days: %w", err)
	}

	windowQuery, args, err := sq.Select("window_title", "url", "context",
		"SUM(duration_seconds) AS total", "COUNT(*)").
		From("activities").
		Where(sq.Eq{"app_name": appName}).
		GroupBy("window_title", "url", "context").
		Having("total > 0").
		OrderBy("total DESC", "window_title ASC").
		Limit(topWindowLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build app windows query: %w", err)
	}
	windowRows, err := s.db.Query(windowQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query app windows: %w", err)
	}
	defer windowRows.Close()

	for windowRows.Next() {
		var bucket model.WindowBucket
		if err := windowRows.Scan(&bucket.WindowTitle, &bucket.URL, &bucket.Context,
			&bucket.TotalSeconds, &bucket.Sessions); err != nil {
			return nil, fmt.Errorf("scan window bucket: %w", err)
		}
		report.TopWindows = append(report.TopWindows, bucket)
	}
	if err := windowRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app windows: %w", err)
	}

	return report, nil
}

// QueryDayByProject aggregates one day's assigned time into brands and their
// projects, each carrying a per-app breakdown. Only brands with at least one
// assigned second appear; brands, projects and apps sort by total descending.
func (s *Store) QueryDayByProject(date string) ([]model.BrandSummary, error) {
	query, args, err := sq.Select(
		"b.id", "b.name", "b.color",
		"p.id", "p.name", "p.color",
		"a.app_name", "SUM(a.duration_seconds) AS total").
		From("activities a").
		Join("projects p ON a.project_id = p.id").
		Join("brands b ON p.brand_id = b.id").
		Where(sq.Eq{"a.date": date}).
		GroupBy("b.id", "p.id", "a.app_name").
		Having("total > 0").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build day-by-project query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query day by project: %w", err)
	}
	defer rows.Close()

	brands := make(map[int64]*model.BrandSummary)
	projects := make(map[int64]*model.ProjectSummary)
	projectBrand := make(map[int64]int64)

	for rows.Next() {
		var brandID, projectID int64
		var brandName, brandColor, projectName, projectColor, appName string
		var total int
		if err := rows.Scan(&brandID, &brandName, &brandColor,
			&projectID, &projectName, &projectColor, &appName, &total); err != nil {
			return nil, fmt.Errorf("scan day by project: %w", err)
		}

		brand, ok := brands[brandID]
		if !ok {
			brand = &model.BrandSummary{BrandID: brandID, BrandName: brandName, Color: brandColor}
			brands[brandID] = brand
		}
		brand.TotalSeconds += total

		project, ok := projects[projectID]
		if !ok {
			project = &model.ProjectSummary{ProjectID: projectID, ProjectName: projectName, Color: projectColor}
			projects[projectID] = project
			projectBrand[projectID] = brandID
		}
		project.TotalSeconds += total
		project.Apps = append(project.Apps, model.AppTotal{AppName: appName, TotalSeconds: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day by project: %w", err)
	}

	for projectID, project := range projects {
		sort.Slice(project.Apps, func(i, j int) bool {
			if project.Apps[i].TotalSeconds != project.Apps[j].TotalSeconds {
				return project.Apps[i].TotalSeconds > project.Apps[j].TotalSeconds
			}
			return project.Apps[i].AppName < project.Apps[j].AppName
		})
		brand := brands[projectBrand[projectID]]
		brand.Projects = append(brand.Projects, *project)
	}

	result := make([]model.BrandSummary, 0, len(brands))
	for _, brand := range brands {
		sort.Slice(brand.Projects, func(i, j int) bool {
			if brand.Projects[i].TotalSeconds != brand.Projects[j].TotalSeconds {
				return brand.Projects[i].TotalSeconds > brand.Projects[j].TotalSeconds
			}
			return brand.Projects[i].ProjectName < brand.Projects[j].ProjectName
		})
		result = append(result, *brand)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSeconds != result[j].TotalSeconds {
			return result[i].TotalSeconds > result[j].TotalSeconds
		}
		return result[i].BrandName < result[j].BrandName
	})

	return result, nil
}

// dayTotal is a cross-check used by tests: it must always equal
// QueryDay(date).TotalSeconds.
func (s *Store) dayTotal(date string) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow("SELECT SUM(duration_seconds) FROM activities WHERE date = ?", date).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query day total: %w", err)
	}
	return int(total.Int64), nil
}
