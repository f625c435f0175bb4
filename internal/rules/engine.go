package rules

import (
	"fmt"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// Store is the slice of the persistent store the rule engine needs.
type Store interface {
	RuleSource
	QueryUnassignedActivities(date string) ([]model.ActivityRecord, error)
	SetActivityProject(ids []int64, projectID *int64) error
	GetProject(id int64) (*model.Project, error)
	InsertRule(rule model.ProjectRule) (*model.ProjectRule, error)
}

// Engine deterministically maps activities to projects through the ordered
// rule set. It owns the rule cache; rule CRUD elsewhere must be followed by
// ReloadRules.
type Engine struct {
	store Store
	cache *RuleCache
}

// NewEngine creates an engine with an empty rule cache.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		cache: NewRuleCache(store),
	}
}

// Match returns the project id of the first rule matching rec, in
// (priority asc, id asc) order, or (0, false) when nothing matches. No match
// is a normal outcome, not an error.
func (e *Engine) Match(rec *model.ActivityRecord) (int64, bool, error) {
	ruleSet, compiled, err := e.cache.Rules()
	if err != nil {
		return 0, false, fmt.Errorf("load rules: %w", err)
	}

	for _, rule := range ruleSet {
		if matchRule(rule, compiled[rule.ID], rec) {
			return rule.ProjectID, true, nil
		}
	}
	return 0, false, nil
}

// AutoAssignUnclassified runs one matching pass over unassigned activities,
// optionally scoped to a date (empty means all dates), and returns the count
// newly assigned. Already-assigned records are never touched, so an immediate
// second call on unchanged data returns zero.
func (e *Engine) AutoAssignUnclassified(date string) (int, error) {
	unassigned, err := e.store.QueryUnassignedActivities(date)
	if err != nil {
		return 0, fmt.Errorf("query unassigned activities: %w", err)
	}

	byProject := make(map[int64][]int64)
	for i := range unassigned {
		projectID, ok, err := e.Match(&unassigned[i])
		if err != nil {
			return 0, err
		}
		if ok {
			byProject[projectID] = append(byProject[projectID], unassigned[i].ID)
		}
	}

	assigned := 0
	for projectID, ids := range byProject {
		pid := projectID
		if err := e.store.SetActivityProject(ids, &pid); err != nil {
			return assigned, fmt.Errorf("assign project %d: %w", projectID, err)
		}
		assigned += len(ids)
	}

	if assigned > 0 {
		util.LogInfof("Auto-assigned %d activities across %d projects", assigned, len(byProject))
	}
	return assigned, nil
}

// ReloadRules invalidates the rule cache so subsequent matches see freshly
// written rules. Call after any rule CRUD.
func (e *Engine) ReloadRules() {
	e.cache.Invalidate()
}

// Classify manually assigns the given activities to projectID, bypassing
// matching. When newRule is non-nil, a rule is also inserted (validated by the
// store) so future matching activities classify automatically.
func (e *Engine) Classify(activityIDs []int64, projectID int64, newRule *model.ProjectRule) error {
	if _, err := e.store.GetProject(projectID); err != nil {
		return fmt.Errorf("validate project %d: %w", projectID, err)
	}

	if err := e.store.SetActivityProject(activityIDs, &projectID); err != nil {
		return fmt.Errorf("set project on activities: %w", err)
	}

	if newRule != nil {
		rule := *newRule
		rule.ProjectID = projectID
		if _, err := e.store.InsertRule(rule); err != nil {
			return fmt.Errorf("insert rule: %w", err)
		}
		e.cache.Invalidate()
	}
	return nil
}
