package model

import "time"

// AppTotal is the tracked time for one application within a report scope.
type AppTotal struct {
	AppName      string `json:"appName"`
	TotalSeconds int    `json:"totalSeconds"`
}

// DaySummary aggregates one calendar day. TotalSeconds is the sum of record
// durations (idle gaps excluded); WallClockSeconds is the elapsed span between
// the first activity start and the last activity end of the day.
type DaySummary struct {
	Date             string    `json:"date"`
	TotalSeconds     int       `json:"totalSeconds"`
	WallClockSeconds int       `json:"wallClockSeconds"`
	Apps             []AppTotal `json:"apps"`
	FirstApp         string    `json:"firstApp,omitempty"`
	LastApp          string    `json:"lastApp,omitempty"`
	FirstSeen        time.Time `json:"firstSeen,omitzero"`
	LastSeen         time.Time `json:"lastSeen,omitzero"`
}

// DayTotal is a per-day line in an application detail report.
type DayTotal struct {
	Date         string `json:"date"`
	TotalSeconds int    `json:"totalSeconds"`
}

// WindowBucket groups activities sharing an identical (window title, URL,
// context) triple, summed across sessions.
type WindowBucket struct {
	WindowTitle  string `json:"windowTitle"`
	URL          string `json:"url,omitempty"`
	Context      string `json:"context,omitempty"`
	TotalSeconds int    `json:"totalSeconds"`
	Sessions     int    `json:"sessions"`
}

// AppDetailReport is the drill-down view for a single application.
type AppDetailReport struct {
	AppName      string         `json:"appName"`
	TotalSeconds int            `json:"totalSeconds"`
	Days         []DayTotal     `json:"days"`
	TopWindows   []WindowBucket `json:"topWindows"`
}

// ProjectSummary is the assigned time of one project for a day, with its
// per-app breakdown.
type ProjectSummary struct {
	ProjectID    int64      `json:"projectId"`
	ProjectName  string     `json:"projectName"`
	Color        string     `json:"color"`
	TotalSeconds int        `json:"totalSeconds"`
	Apps         []AppTotal `json:"apps"`
}

// BrandSummary groups project summaries under their brand. Only brands with
// at least one assigned second appear in day-by-project reports.
type BrandSummary struct {
	BrandID      int64            `json:"brandId"`
	BrandName    string           `json:"brandName"`
	Color        string           `json:"color"`
	TotalSeconds int              `json:"totalSeconds"`
	Projects     []ProjectSummary `json:"projects"`
}
