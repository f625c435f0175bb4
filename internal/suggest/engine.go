package suggest

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/rules"
	"github.com/penwyp/go-focus-monitor/internal/store"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// Store is the slice of the persistent store the suggestion engine needs.
type Store interface {
	QueryUnassignedActivities(date string) ([]model.ActivityRecord, error)
	DismissedTokens() (map[string]struct{}, error)
	DismissToken(token string) error
	GetBrandByName(name string) (*model.Brand, error)
	InsertBrand(name, color string) (*model.Brand, error)
	GetProjectByName(brandID int64, name string) (*model.Project, error)
	InsertProject(brandID int64, name, color string) (*model.Project, error)
	InsertRule(rule model.ProjectRule) (*model.ProjectRule, error)
	SetActivityProject(ids []int64, projectID *int64) error
	GetProject(id int64) (*model.Project, error)
}

// defaultRulePriority places accepted rules after any hand-tuned rules with
// lower numbers.
const defaultRulePriority = 100

// Engine proposes brand/project groupings from unassigned activities and
// turns accepted suggestions into real taxonomy entries plus a one-shot
// assignment pass.
type Engine struct {
	store Store
	rules *rules.Engine
}

// NewEngine wires the suggestion engine to the store and the rule engine
// whose cache it must invalidate after inserting rules.
func NewEngine(s Store, ruleEngine *rules.Engine) *Engine {
	return &Engine{store: s, rules: ruleEngine}
}

// Detect clusters all unassigned activities into detected brands. Read-only
// and deterministic: unchanged data yields identical groupings, names and
// tokens, and dismissed tokens never re-surface.
func (e *Engine) Detect() ([]model.DetectedBrand, error) {
	unassigned, err := e.store.QueryUnassignedActivities("")
	if err != nil {
		return nil, fmt.Errorf("query unassigned activities: %w", err)
	}
	dismissed, err := e.store.DismissedTokens()
	if err != nil {
		return nil, fmt.Errorf("load dismissed tokens: %w", err)
	}

	return groupBrands(cluster(unassigned, dismissed)), nil
}

// Accept materializes a suggestion under brandName/projectName, creating or
// reusing both, inserts the suggested rules, and runs a one-shot assignment
// restricted to those rules. Returns the count of newly assigned activities.
func (e *Engine) Accept(brandName, projectName string, suggested []model.SuggestedRule) (int, error) {
	brand, err := e.store.GetBrandByName(brandName)
	if errors.Is(err, store.ErrNotFound) {
		brand, err = e.store.InsertBrand(brandName, paletteColor(brandName))
	}
	if err != nil {
		return 0, fmt.Errorf("resolve brand %q: %w", brandName, err)
	}

	project, err := e.store.GetProjectByName(brand.ID, projectName)
	if errors.Is(err, store.ErrNotFound) {
		project, err = e.store.InsertProject(brand.ID, projectName, paletteColor(projectName))
	}
	if err != nil {
		return 0, fmt.Errorf("resolve project %q: %w", projectName, err)
	}

	return e.acceptInto(project.ID, suggested)
}

// AcceptInto inserts the suggested rules under an existing project and runs
// the restricted assignment pass.
func (e *Engine) AcceptInto(projectID int64, suggested []model.SuggestedRule) (int, error) {
	if _, err := e.store.GetProject(projectID); err != nil {
		return 0, fmt.Errorf("validate project %d: %w", projectID, err)
	}
	return e.acceptInto(projectID, suggested)
}

func (e *Engine) acceptInto(projectID int64, suggested []model.SuggestedRule) (int, error) {
	inserted := make([]model.ProjectRule, 0, len(suggested))
	for _, s := range suggested {
		rule, err := e.store.InsertRule(model.ProjectRule{
			ProjectID: projectID,
			RuleType:  s.RuleType,
			Pattern:   s.Pattern,
			Priority:  defaultRulePriority,
		})
		if err != nil {
			return 0, fmt.Errorf("insert suggested rule: %w", err)
		}
		inserted = append(inserted, *rule)
	}
	e.rules.ReloadRules()

	// Assignment restricted to the freshly inserted rules; pre-existing rules
	// stay out of this pass.
	unassigned, err := e.store.QueryUnassignedActivities("")
	if err != nil {
		return 0, fmt.Errorf("query unassigned activities: %w", err)
	}

	var ids []int64
	for i := range unassigned {
		for _, rule := range inserted {
			ok, err := rules.Matches(rule, &unassigned[i])
			if err != nil {
				return 0, err
			}
			if ok {
				ids = append(ids, unassigned[i].ID)
				break
			}
		}
	}
	if len(ids) > 0 {
		if err := e.store.SetActivityProject(ids, &projectID); err != nil {
			return 0, fmt.Errorf("assign accepted activities: %w", err)
		}
	}

	util.LogInfof("Accepted suggestion: %d rules, %d activities assigned to project %d",
		len(inserted), len(ids), projectID)
	return len(ids), nil
}

// Dismiss persists the token so Detect never surfaces its grouping again.
// Dismissal suppresses the suggestion only; no activity data is touched.
func (e *Engine) Dismiss(token string) error {
	if token == "" {
		return fmt.Errorf("dismiss token: %w", store.ErrInvalidInput)
	}
	return e.store.DismissToken(token)
}

// palette is the fixed color set for auto-created brands and projects; the
// pick is a stable hash of the name so re-creation lands on the same color.
var palette = []string{
	"#e06c75", "#61afef", "#98c379", "#e5c07b",
	"#c678dd", "#56b6c2", "#d19a66", "#abb2bf",
}

func paletteColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
