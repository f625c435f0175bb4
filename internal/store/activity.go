package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/penwyp/go-focus-monitor/internal/core/model"
)

var activityColumns = []string{
	"id", "timestamp", "app_name", "bundle_id", "window_title",
	"url", "context", "duration_seconds", "date", "project_id",
}

// InsertActivity persists a new activity record and sets its id.
func (s *Store) InsertActivity(rec *model.ActivityRecord) (int64, error) {
	query, args, err := sq.Insert("activities").
		Columns("timestamp", "app_name", "bundle_id", "window_title",
			"url", "context", "duration_seconds", "date", "project_id").
		Values(rec.Timestamp.Unix(), rec.AppName, rec.BundleID, rec.WindowTitle,
			rec.URL, rec.Context, rec.DurationSeconds, rec.Date, rec.ProjectID).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert activity: %w", err)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert activity id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// UpdateActivityDuration overwrites the stored duration of an open session.
// Idempotent; the session merger is the only caller.
func (s *Store) UpdateActivityDuration(id int64, seconds int) error {
	query, args, err := sq.Update("activities").
		Set("duration_seconds", seconds).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update duration: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	return nil
}

// SetActivityProject assigns (or clears, when projectID is nil) the project
// of the given activities. Duration, timestamp and date are never touched.
func (s *Store) SetActivityProject(ids []int64, projectID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sq.Update("activities").
		Set("project_id", projectID).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign project: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("assign project: %w", err)
	}
	return nil
}

// GetActivity loads one activity by id.
func (s *Store) GetActivity(id int64) (*model.ActivityRecord, error) {
	query, args, err := sq.Select(activityColumns...).
		From("activities").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get activity: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	defer rows.Close()

	records, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("activity %d: %w", id, ErrNotFound)
	}
	return &records[0], nil
}

// QueryTimeline returns the activities of a date ordered by timestamp, ties
// broken by insertion order.
func (s *Store) QueryTimeline(date string) ([]model.ActivityRecord, error) {
	query, args, err := sq.Select(activityColumns...).
		From("activities").
		Where(sq.Eq{"date": date}).
		OrderBy("timestamp ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build timeline query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// QueryUnassignedActivities returns activities without a project assignment,
// optionally scoped to a date (empty date means all dates).
func (s *Store) QueryUnassignedActivities(date string) ([]model.ActivityRecord, error) {
	builder := sq.Select(activityColumns...).
		From("activities").
		Where(sq.Eq{"project_id": nil}).
		OrderBy("timestamp ASC", "id ASC")
	if date != "" {
		builder = builder.Where(sq.Eq{"date": date})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unassigned query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unassigned activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	for rows.Next() {
		var rec model.ActivityRecord
		var ts int64
		var projectID sql.NullInt64
		if err := rows.Scan(&rec.ID, &ts, &rec.AppName, &rec.BundleID, &rec.WindowTitle,
			&rec.URL, &rec.Context, &rec.DurationSeconds, &rec.Date, &projectID); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0)
		if projectID.Valid {
			id := projectID.Int64
			rec.ProjectID = &id
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return records, nil
}
