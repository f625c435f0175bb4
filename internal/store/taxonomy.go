package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/penwyp/go-focus-monitor/internal/core/model"
)

// InsertBrand creates a brand. Brand names are globally unique.
func (s *Store) InsertBrand(name, color string) (*model.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("brand name is empty: %w", ErrInvalidInput)
	}

	if existing, err := s.GetBrandByName(name); err == nil && existing != nil {
		return nil, fmt.Errorf("brand %q: %w", name, ErrDuplicateName)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	sortOrder, err := s.nextSortOrder("brands", sq.Eq{})
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Insert("brands").
		Columns("name", "color", "sort_order").
		Values(name, color, sortOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert brand: %w", err)
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert brand: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert brand id: %w", err)
	}

	return &model.Brand{ID: id, Name: name, Color: color, SortOrder: sortOrder}, nil
}

// AllBrands returns every brand ordered by sort order then name.
func (s *Store) AllBrands() ([]model.Brand, error) {
	query, args, err := sq.Select("id", "name", "color", "sort_order").
		From("brands").
		OrderBy("sort_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list brands: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Color, &b.SortOrder); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brands: %w", err)
	}
	return brands, nil
}

// GetBrand loads one brand by id.
func (s *Store) GetBrand(id int64) (*model.Brand, error) {
	var b model.Brand
	err := s.db.QueryRow("SELECT id, name, color, sort_order FROM brands WHERE id = ?", id).
		Scan(&b.ID, &b.Name, &b.Color, &b.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("brand %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &b, nil
}

// GetBrandByName loads one brand by its unique name.
func (s *Store) GetBrandByName(name string) (*model.Brand, error) {
	var b model.Brand
	err := s.db.QueryRow("SELECT id, name, color, sort_order FROM brands WHERE name = ?", name).
		Scan(&b.ID, &b.Name, &b.Color, &b.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("brand %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get brand by name: %w", err)
	}
	return &b, nil
}

// DeleteBrand removes a brand, cascading to its projects and their rules.
// Activities assigned to those projects keep their time fields; only the
// assignment is cleared (schema-level ON DELETE SET NULL).
func (s *Store) DeleteBrand(id int64) error {
	result, err := s.db.Exec("DELETE FROM brands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete brand affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("brand %d: %w", id, ErrNotFound)
	}
	return nil
}

// MergeBrand moves every project of the source brand to the target brand and
// deletes the source. Project ids, rule ids and rule contents are unchanged.
func (s *Store) MergeBrand(sourceID, targetID int64) error {
	if sourceID == targetID {
		return fmt.Errorf("cannot merge brand %d into itself: %w", sourceID, ErrInvalidInput)
	}
	if _, err := s.GetBrand(sourceID); err != nil {
		return err
	}
	if _, err := s.GetBrand(targetID); err != nil {
		return err
	}

	var conflicts int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM projects src
		JOIN projects dst ON dst.brand_id = ? AND dst.name = src.name
		WHERE src.brand_id = ?
	`, targetID, sourceID).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("check merge conflicts: %w", err)
	}
	if conflicts > 0 {
		return fmt.Errorf("merge brand %d into %d: %d project name(s) already exist in target: %w",
			sourceID, targetID, conflicts, ErrDuplicateName)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE projects SET brand_id = ? WHERE brand_id = ?", targetID, sourceID); err != nil {
		return fmt.Errorf("reassign projects: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM brands WHERE id = ?", sourceID); err != nil {
		return fmt.Errorf("delete merged brand: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}
	return nil
}

// InsertProject creates a project under a brand. Names are unique per brand.
func (s *Store) InsertProject(brandID int64, name, color string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is empty: %w", ErrInvalidInput)
	}
	if _, err := s.GetBrand(brandID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("project %q: brand %d: %w", name, brandID, ErrMissingParent)
		}
		return nil, err
	}

	var existingID int64
	err := s.db.QueryRow("SELECT id FROM projects WHERE brand_id = ? AND name = ?", brandID, name).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("project %q in brand %d: %w", name, brandID, ErrDuplicateName)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check project name: %w", err)
	}

	sortOrder, err := s.nextSortOrder("projects", sq.Eq{"brand_id": brandID})
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Insert("projects").
		Columns("brand_id", "name", "color", "sort_order").
		Values(brandID, name, color, sortOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert project: %w", err)
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert project id: %w", err)
	}

	return &model.Project{ID: id, BrandID: brandID, Name: name, Color: color, SortOrder: sortOrder}, nil
}

// AllProjects returns every project ordered by brand, sort order, name.
func (s *Store) AllProjects() ([]model.Project, error) {
	query, args, err := sq.Select("id", "brand_id", "name", "color", "sort_order").
		From("projects").
		OrderBy("brand_id ASC", "sort_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.BrandID, &p.Name, &p.Color, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// GetProject loads one project by id.
func (s *Store) GetProject(id int64) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow("SELECT id, brand_id, name, color, sort_order FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.BrandID, &p.Name, &p.Color, &p.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// GetProjectByName loads a project by name within a brand.
func (s *Store) GetProjectByName(brandID int64, name string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow("SELECT id, brand_id, name, color, sort_order FROM projects WHERE brand_id = ? AND name = ?",
		brandID, name).
		Scan(&p.ID, &p.BrandID, &p.Name, &p.Color, &p.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q in brand %d: %w", name, brandID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project by name: %w", err)
	}
	return &p, nil
}

// DeleteProject removes a project, cascading to its rules and clearing the
// assignment of its activities.
func (s *Store) DeleteProject(id int64) error {
	result, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertRule persists a classification rule after validating it. A regex
// pattern that does not compile is rejected here and never stored.
func (s *Store) InsertRule(rule model.ProjectRule) (*model.ProjectRule, error) {
	if !model.ValidRuleType(rule.RuleType) {
		return nil, fmt.Errorf("rule type %q: %w", rule.RuleType, ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return nil, fmt.Errorf("rule pattern is empty: %w", ErrInvalidRule)
	}
	if rule.IsRegex {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return nil, fmt.Errorf("rule pattern %q does not compile: %v: %w", rule.Pattern, err, ErrInvalidRule)
		}
	}
	if _, err := s.GetProject(rule.ProjectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("rule for project %d: %w", rule.ProjectID, ErrMissingParent)
		}
		return nil, err
	}

	query, args, err := sq.Insert("project_rules").
		Columns("project_id", "rule_type", "pattern", "is_regex", "priority").
		Values(rule.ProjectID, string(rule.RuleType), rule.Pattern, rule.IsRegex, rule.Priority).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert rule: %w", err)
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert rule id: %w", err)
	}
	rule.ID = id
	return &rule, nil
}

// LoadAllProjectRules returns every rule in evaluation order: priority
// ascending, id ascending.
func (s *Store) LoadAllProjectRules() ([]model.ProjectRule, error) {
	query, args, err := sq.Select("id", "project_id", "rule_type", "pattern", "is_regex", "priority").
		From("project_rules").
		OrderBy("priority ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rules: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []model.ProjectRule
	for rows.Next() {
		var r model.ProjectRule
		var ruleType string
		if err := rows.Scan(&r.ID, &r.ProjectID, &ruleType, &r.Pattern, &r.IsRegex, &r.Priority); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.RuleType = model.RuleType(ruleType)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes one rule.
func (s *Store) DeleteRule(id int64) error {
	result, err := s.db.Exec("DELETE FROM project_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", id, ErrNotFound)
	}
	return nil
}

// DismissToken records a suggestion token the user rejected so detection
// never re-surfaces it. Dismissing twice is a no-op.
func (s *Store) DismissToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("dismissal token is empty: %w", ErrInvalidInput)
	}
	_, err := s.db.Exec("INSERT OR IGNORE INTO dismissed_tokens (token, dismissed_at) VALUES (?, ?)",
		token, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("dismiss token: %w", err)
	}
	return nil
}

// DismissedTokens returns the set of dismissed suggestion tokens.
func (s *Store) DismissedTokens() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT token FROM dismissed_tokens")
	if err != nil {
		return nil, fmt.Errorf("list dismissed tokens: %w", err)
	}
	defer rows.Close()

	tokens := make(map[string]struct{})
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan dismissed token: %w", err)
		}
		tokens[token] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dismissed tokens: %w", err)
	}
	return tokens, nil
}

func (s *Store) nextSortOrder(table string, where sq.Eq) (int, error) {
	builder := sq.Select("COALESCE(MAX(sort_order), -1) + 1").From(table)
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sort order query: %w", err)
	}
	var next int
	if err := s.db.QueryRow(query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("query sort order: %w", err)
	}
	return next, nil
}
