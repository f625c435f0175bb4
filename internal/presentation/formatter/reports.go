package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// FormatDay renders a single day summary.
func (f *Formatter) FormatDay(summary *model.DaySummary) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(summary)
	case OutputCSV:
		return f.writeCSV([]string{"App", "Time", "Seconds"}, dayRows(summary, false))
	case OutputSummary:
		f.daySummaryBlock(summary)
		return nil
	}

	if summary.TotalSeconds == 0 {
		fmt.Fprintf(f.w, "No activity tracked on %s\n", summary.Date)
		return nil
	}
	fmt.Fprintf(f.w, "Activity for %s — active %s, span %s (%s → %s)\n",
		summary.Date,
		util.FormatSeconds(summary.TotalSeconds),
		util.FormatSeconds(summary.WallClockSeconds),
		summary.FirstApp, summary.LastApp)
	f.renderTable([]string{"App", "Time", "Seconds"}, dayRows(summary, true), map[int]bool{1: true, 2: true})
	return nil
}

func dayRows(summary *model.DaySummary, pretty bool) [][]string {
	rows := make([][]string, 0, len(summary.Apps))
	for _, app := range summary.Apps {
		timeCol := strconv.Itoa(app.TotalSeconds)
		if pretty {
			timeCol = util.FormatSeconds(app.TotalSeconds)
		}
		rows = append(rows, []string{app.AppName, timeCol, strconv.Itoa(app.TotalSeconds)})
	}
	return rows
}

func (f *Formatter) daySummaryBlock(summary *model.DaySummary) {
	fmt.Fprintln(f.w, strings.Repeat("=", 50))
	fmt.Fprintf(f.w, "Daily Activity — %s\n", summary.Date)
	fmt.Fprintln(f.w, strings.Repeat("=", 50))
	if summary.TotalSeconds == 0 {
		fmt.Fprintln(f.w, "No activity tracked")
		return
	}
	fmt.Fprintf(f.w, "Active time:  %s\n", util.FormatSeconds(summary.TotalSeconds))
	fmt.Fprintf(f.w, "Wall clock:   %s\n", util.FormatSeconds(summary.WallClockSeconds))
	fmt.Fprintf(f.w, "First:        %s (%s)\n", summary.FirstApp, summary.FirstSeen.Format("15:04"))
	fmt.Fprintf(f.w, "Last:         %s (%s)\n", summary.LastApp, summary.LastSeen.Format("15:04"))
	fmt.Fprintf(f.w, "Applications: %d\n", len(summary.Apps))
}

// FormatDays renders a multi-day range (week or month views).
func (f *Formatter) FormatDays(days []model.DaySummary) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(days)
	case OutputCSV:
		return f.writeCSV([]string{"Date", "Active Seconds", "Wall Clock Seconds", "Top App"}, daysRows(days, false))
	case OutputSummary:
		total := 0
		for _, day := range days {
			total += day.TotalSeconds
		}
		fmt.Fprintf(f.w, "%d active days, %s total\n", len(days), util.FormatSeconds(total))
		return nil
	}

	if len(days) == 0 {
		fmt.Fprintln(f.w, "No activity tracked in this range")
		return nil
	}
	f.renderTable([]string{"Date", "Active", "Wall Clock", "Top App"}, daysRows(days, true), map[int]bool{1: true, 2: true})
	return nil
}

func daysRows(days []model.DaySummary, pretty bool) [][]string {
	rows := make([][]string, 0, len(days))
	for _, day := range days {
		topApp := ""
		if len(day.Apps) > 0 {
			topApp = day.Apps[0].AppName
		}
		active := strconv.Itoa(day.TotalSeconds)
		wall := strconv.Itoa(day.WallClockSeconds)
		if pretty {
			active = util.FormatSeconds(day.TotalSeconds)
			wall = util.FormatSeconds(day.WallClockSeconds)
		}
		rows = append(rows, []string{day.Date, active, wall, topApp})
	}
	return rows
}

// FormatApp renders an application drill-down report.
func (f *Formatter) FormatApp(report *model.AppDetailReport) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(report)
	case OutputCSV:
		rows := make([][]string, 0, len(report.TopWindows))
		for _, bucket := range report.TopWindows {
			rows = append(rows, []string{
				bucket.WindowTitle, bucket.URL, bucket.Context,
				strconv.Itoa(bucket.TotalSeconds), strconv.Itoa(bucket.Sessions),
			})
		}
		return f.writeCSV([]string{"Window", "URL", "Context", "Seconds", "Sessions"}, rows)
	case OutputSummary:
		fmt.Fprintf(f.w, "%s: %s over %d days, %d distinct windows\n",
			report.AppName, util.FormatSeconds(report.TotalSeconds),
			len(report.Days), len(report.TopWindows))
		return nil
	}

	if report.TotalSeconds == 0 {
		fmt.Fprintf(f.w, "No activity tracked for %s\n", report.AppName)
		return nil
	}
	fmt.Fprintf(f.w, "%s — %s total\n", report.AppName, util.FormatSeconds(report.TotalSeconds))

	dayRows := make([][]string, 0, len(report.Days))
	for _, day := range report.Days {
		dayRows = append(dayRows, []string{day.Date, util.FormatSeconds(day.TotalSeconds)})
	}
	f.renderTable([]string{"Date", "Time"}, dayRows, map[int]bool{1: true})

	if len(report.TopWindows) > 0 {
		fmt.Fprintln(f.w, "\nTop windows:")
		windowRows := make([][]string, 0, len(report.TopWindows))
		for _, bucket := range report.TopWindows {
			detail := bucket.URL
			if detail == "" {
				detail = bucket.Context
			}
			windowRows = append(windowRows, []string{
				bucket.WindowTitle, detail,
				util.FormatSeconds(bucket.TotalSeconds), strconv.Itoa(bucket.Sessions),
			})
		}
		f.renderTable([]string{"Window", "URL/Context", "Time", "Sessions"}, windowRows, map[int]bool{2: true, 3: true})
	}
	return nil
}

// FormatTimeline renders a day's activities in chronological order.
func (f *Formatter) FormatTimeline(date string, records []model.ActivityRecord) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(records)
	case OutputCSV:
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				rec.Timestamp.Format("15:04:05"), rec.AppName, rec.WindowTitle,
				rec.URL, strconv.Itoa(rec.DurationSeconds),
			})
		}
		return f.writeCSV([]string{"Start", "App", "Window", "URL", "Seconds"}, rows)
	case OutputSummary:
		fmt.Fprintf(f.w, "%d sessions on %s\n", len(records), date)
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintf(f.w, "No activity tracked on %s\n", date)
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Format("15:04:05"),
			rec.AppName,
			rec.WindowTitle,
			util.FormatSeconds(rec.DurationSeconds),
		})
	}
	f.renderTable([]string{"Start", "App", "Window", "Time"}, rows, map[int]bool{3: true})
	return nil
}

// FormatProjects renders a day's assigned time grouped by brand and project.
func (f *Formatter) FormatProjects(date string, brands []model.BrandSummary) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(brands)
	case OutputCSV:
		var rows [][]string
		for _, brand := range brands {
			for _, project := range brand.Projects {
				rows = append(rows, []string{
					brand.BrandName, project.ProjectName, strconv.Itoa(project.TotalSeconds),
				})
			}
		}
		return f.writeCSV([]string{"Brand", "Project", "Seconds"}, rows)
	case OutputSummary:
		total := 0
		for _, brand := range brands {
			total += brand.TotalSeconds
		}
		fmt.Fprintf(f.w, "%s assigned across %d brands on %s\n",
			util.FormatSeconds(total), len(brands), date)
		return nil
	}

	if len(brands) == 0 {
		fmt.Fprintf(f.w, "No assigned activity on %s\n", date)
		return nil
	}
	for _, brand := range brands {
		fmt.Fprintf(f.w, "%s — %s\n", brand.BrandName, util.FormatSeconds(brand.TotalSeconds))
		rows := make([][]string, 0, len(brand.Projects))
		for _, project := range brand.Projects {
			apps := make([]string, 0, len(project.Apps))
			for _, app := range project.Apps {
				apps = append(apps, app.AppName)
			}
			rows = append(rows, []string{
				project.ProjectName,
				util.FormatSeconds(project.TotalSeconds),
				strings.Join(apps, ", "),
			})
		}
		f.renderTable([]string{"Project", "Time", "Apps"}, rows, map[int]bool{1: true})
	}
	return nil
}

// FormatSuggestions renders detected brand/project groupings.
func (f *Formatter) FormatSuggestions(brands []model.DetectedBrand) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(brands)
	case OutputCSV:
		var rows [][]string
		for _, brand := range brands {
			for _, project := range brand.Projects {
				rows = append(rows, []string{
					brand.Name, project.Name, project.Token,
					strconv.Itoa(project.ActivityCount), strconv.Itoa(project.TotalSeconds),
				})
			}
		}
		return f.writeCSV([]string{"Brand", "Project", "Token", "Activities", "Seconds"}, rows)
	case OutputSummary:
		projects := 0
		for _, brand := range brands {
			projects += len(brand.Projects)
		}
		fmt.Fprintf(f.w, "%d suggested projects across %d brands\n", projects, len(brands))
		return nil
	}

	if len(brands) == 0 {
		fmt.Fprintln(f.w, "No suggestions — everything classifiable is already assigned")
		return nil
	}
	for _, brand := range brands {
		fmt.Fprintf(f.w, "%s — %s unassigned\n", brand.Name, util.FormatSeconds(brand.TotalSeconds))
		rows := make([][]string, 0, len(brand.Projects))
		for _, project := range brand.Projects {
			ruleDescs := make([]string, 0, len(project.Rules))
			for _, rule := range project.Rules {
				ruleDescs = append(ruleDescs, fmt.Sprintf("%s:%s", rule.RuleType, rule.Pattern))
			}
			rows = append(rows, []string{
				project.Name,
				project.Token,
				strconv.Itoa(project.ActivityCount),
				util.FormatSeconds(project.TotalSeconds),
				strings.Join(ruleDescs, "; "),
			})
		}
		f.renderTable([]string{"Project", "Token", "Activities", "Time", "Suggested Rules"}, rows, map[int]bool{2: true, 3: true})
	}
	return nil
}

// FormatBrands renders the brand list.
func (f *Formatter) FormatBrands(brands []model.Brand) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(brands)
	case OutputCSV, OutputSummary, OutputTable:
		rows := make([][]string, 0, len(brands))
		for _, brand := range brands {
			rows = append(rows, []string{strconv.FormatInt(brand.ID, 10), brand.Name, brand.Color})
		}
		headers := []string{"ID", "Name", "Color"}
		if f.output == OutputCSV {
			return f.writeCSV(headers, rows)
		}
		f.renderTable(headers, rows, map[int]bool{0: true})
	}
	return nil
}

// FormatProjectList renders projects with their brand names resolved.
func (f *Formatter) FormatProjectList(projects []model.Project, brandNames map[int64]string) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(projects)
	case OutputCSV, OutputSummary, OutputTable:
		rows := make([][]string, 0, len(projects))
		for _, project := range projects {
			rows = append(rows, []string{
				strconv.FormatInt(project.ID, 10),
				brandNames[project.BrandID],
				project.Name,
				project.Color,
			})
		}
		headers := []string{"ID", "Brand", "Name", "Color"}
		if f.output == OutputCSV {
			return f.writeCSV(headers, rows)
		}
		f.renderTable(headers, rows, map[int]bool{0: true})
	}
	return nil
}

// FormatRules renders the rule list in evaluation order.
func (f *Formatter) FormatRules(rules []model.ProjectRule) error {
	switch f.output {
	case OutputJSON:
		return f.writeJSON(rules)
	case OutputCSV, OutputSummary, OutputTable:
		rows := make([][]string, 0, len(rules))
		for _, rule := range rules {
			regex := ""
			if rule.IsRegex {
				regex = "regex"
			}
			rows = append(rows, []string{
				strconv.FormatInt(rule.ID, 10),
				strconv.FormatInt(rule.ProjectID, 10),
				string(rule.RuleType),
				rule.Pattern,
				regex,
				strconv.Itoa(rule.Priority),
			})
		}
		headers := []string{"ID", "Project", "Type", "Pattern", "Regex", "Priority"}
		if f.output == OutputCSV {
			return f.writeCSV(headers, rows)
		}
		f.renderTable(headers, rows, map[int]bool{0: true, 1: true, 5: true})
	}
	return nil
}
