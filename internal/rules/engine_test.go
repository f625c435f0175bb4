package rules

import (
	"fmt"
	"testing"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleStore struct {
	rules      []model.ProjectRule
	activities []model.ActivityRecord
	projects   map[int64]*model.Project
	nextRuleID int64
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{projects: make(map[int64]*model.Project)}
}

func (f *fakeRuleStore) addProject(id int64, name string) {
	f.projects[id] = &model.Project{ID: id, Name: name}
}

func (f *fakeRuleStore) addRule(projectID int64, t model.RuleType, pattern string, isRegex bool, priority int) {
	f.nextRuleID++
	f.rules = append(f.rules, model.ProjectRule{
		ID:        f.nextRuleID,
		ProjectID: projectID,
		RuleType:  t,
		Pattern:   pattern,
		IsRegex:   isRegex,
		Priority:  priority,
	})
}

func (f *fakeRuleStore) LoadAllProjectRules() ([]model.ProjectRule, error) {
	// Snapshot in (priority asc, id asc) order, matching the store's query.
	ordered := make([]model.ProjectRule, len(f.rules))
	copy(ordered, f.rules)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, b := ordered[j-1], ordered[j]
			if a.Priority > b.Priority || (a.Priority == b.Priority && a.ID > b.ID) {
				ordered[j-1], ordered[j] = b, a
			}
		}
	}
	return ordered, nil
}

func (f *fakeRuleStore) QueryUnassignedActivities(date string) ([]model.ActivityRecord, error) {
	var out []model.ActivityRecord
	for _, rec := range f.activities {
		if rec.ProjectID != nil {
			continue
		}
		if date != "" && rec.Date != date {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRuleStore) SetActivityProject(ids []int64, projectID *int64) error {
	for _, id := range ids {
		for i := range f.activities {
			if f.activities[i].ID == id {
				f.activities[i].ProjectID = projectID
			}
		}
	}
	return nil
}

func (f *fakeRuleStore) GetProject(id int64) (*model.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: not found", id)
	}
	return project, nil
}

func (f *fakeRuleStore) InsertRule(rule model.ProjectRule) (*model.ProjectRule, error) {
	f.nextRuleID++
	rule.ID = f.nextRuleID
	f.rules = append(f.rules, rule)
	return &rule, nil
}

func TestMatchPerRuleType(t *testing.T) {
	tests := []struct {
		name    string
		rule    model.ProjectRule
		record  model.ActivityRecord
		matches bool
	}{
		{
			name:    "url-domain matches exact host",
			rule:    model.ProjectRule{RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			record:  model.ActivityRecord{URL: "https://acme.com/dashboard"},
			matches: true,
		},
		{
			name:    "url-domain matches subdomain",
			rule:    model.ProjectRule{RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			record:  model.ActivityRecord{URL: "https://app.acme.com/tickets"},
			matches: true,
		},
		{
			name:    "url-domain rejects lookalike suffix",
			rule:    model.ProjectRule{RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			record:  model.ActivityRecord{URL: "https://notacme.com"},
			matches: false,
		},
		{
			name:    "url-domain rejects other host",
			rule:    model.ProjectRule{RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			record:  model.ActivityRecord{URL: "https://other.com"},
			matches: false,
		},
		{
			name:    "url-domain ignores record without URL",
			rule:    model.ProjectRule{RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			record:  model.ActivityRecord{WindowTitle: "acme.com"},
			matches: false,
		},
		{
			name:    "terminal-folder matches last segment exactly",
			rule:    model.ProjectRule{RuleType: model.RuleTerminalFolder, Pattern: "acme-site"},
			record:  model.ActivityRecord{Context: "/Users/dev/work/acme-site"},
			matches: true,
		},
		{
			name:    "terminal-folder is case-insensitive",
			rule:    model.ProjectRule{RuleType: model.RuleTerminalFolder, Pattern: "Acme-Site"},
			record:  model.ActivityRecord{Context: "/Users/dev/work/acme-site"},
			matches: true,
		},
		{
			name:    "terminal-folder rejects parent segment",
			rule:    model.ProjectRule{RuleType: model.RuleTerminalFolder, Pattern: "work"},
			record:  model.ActivityRecord{Context: "/Users/dev/work/acme-site"},
			matches: false,
		},
		{
			name:    "url-path substring",
			rule:    model.ProjectRule{RuleType: model.RuleURLPath, Pattern: "/projects/acme"},
			record:  model.ActivityRecord{URL: "https://tracker.io/projects/acme/board"},
			matches: true,
		},
		{
			name:    "window-title substring case-insensitive",
			rule:    model.ProjectRule{RuleType: model.RuleWindowTitle, Pattern: "acme redesign"},
			record:  model.ActivityRecord{WindowTitle: "Acme Redesign — Figma"},
			matches: true,
		},
		{
			name:    "page-title substring",
			rule:    model.ProjectRule{RuleType: model.RulePageTitle, Pattern: "quarterly report"},
			record:  model.ActivityRecord{WindowTitle: "Quarterly Report 2026 - Google Docs"},
			matches: true,
		},
		{
			name:    "bundle-id exact equality",
			rule:    model.ProjectRule{RuleType: model.RuleBundleID, Pattern: "com.figma.Desktop"},
			record:  model.ActivityRecord{BundleID: "com.figma.desktop"},
			matches: true,
		},
		{
			name:    "bundle-id rejects substring",
			rule:    model.ProjectRule{RuleType: model.RuleBundleID, Pattern: "com.figma"},
			record:  model.ActivityRecord{BundleID: "com.figma.Desktop"},
			matches: false,
		},
		{
			name:    "design-file matches context",
			rule:    model.ProjectRule{RuleType: model.RuleDesignFile, Pattern: "acme-mockups"},
			record:  model.ActivityRecord{Context: "Acme-Mockups.sketch"},
			matches: true,
		},
		{
			name:    "design-file falls through to URL",
			rule:    model.ProjectRule{RuleType: model.RuleDesignFile, Pattern: "file/abc123"},
			record:  model.ActivityRecord{URL: "https://figma.com/file/abc123/acme"},
			matches: true,
		},
		{
			name:    "regex matches as written",
			rule:    model.ProjectRule{ID: 1, RuleType: model.RuleWindowTitle, Pattern: `^ACME-\d+`, IsRegex: true},
			record:  model.ActivityRecord{WindowTitle: "ACME-142: fix login"},
			matches: true,
		},
		{
			name:    "regex stays case-sensitive",
			rule:    model.ProjectRule{ID: 1, RuleType: model.RuleWindowTitle, Pattern: `^ACME-\d+`, IsRegex: true},
			record:  model.ActivityRecord{WindowTitle: "acme-142: fix login"},
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeRuleStore()
			store.addProject(1, "Acme")
			tt.rule.ProjectID = 1
			store.rules = append(store.rules, tt.rule)

			engine := NewEngine(store)
			projectID, ok, err := engine.Match(&tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, ok)
			if tt.matches {
				assert.Equal(t, int64(1), projectID)
			}
		})
	}
}

func TestMatchFirstWinsByPriorityThenID(t *testing.T) {
	store := newFakeRuleStore()
	store.addProject(1, "Acme")
	store.addProject(2, "Globex")
	rec := model.ActivityRecord{URL: "https://app.acme.com"}

	// Both rules match; lower priority wins.
	store.addRule(1, model.RuleURLDomain, "acme.com", false, 50)
	store.addRule(2, model.RuleURLDomain, "app.acme.com", false, 100)

	engine := NewEngine(store)
	projectID, ok, err := engine.Match(&rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), projectID)

	// Equal priority: the older rule (lower id) wins.
	store2 := newFakeRuleStore()
	store2.addProject(1, "Acme")
	store2.addProject(2, "Globex")
	store2.addRule(2, model.RuleURLDomain, "acme.com", false, 100)
	store2.addRule(1, model.RuleURLDomain, "acme.com", false, 100)

	engine2 := NewEngine(store2)
	projectID, ok, err = engine2.Match(&rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), projectID)
}

func TestMatchIsDeterministic(t *testing.T) {
	store := newFakeRuleStore()
	store.addProject(1, "Acme")
	store.addRule(1, model.RuleURLDomain, "acme.com", false, 100)
	engine := NewEngine(store)

	rec := model.ActivityRecord{URL: "https://app.acme.com"}
	for i := 0; i < 5; i++ {
		projectID, ok, err := engine.Match(&rec)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(1), projectID)
	}
}

func TestAutoAssignUnclassifiedIsIdempotent(t *testing.T) {
	store := newFakeRuleStore()
	store.addProject(1, "Acme")
	store.addRule(1, model.RuleURLDomain, "acme.com", false, 100)
	for i := int64(1); i <= 10; i++ {
		store.activities = append(store.activities, model.ActivityRecord{
			ID: i, Date: "2024-01-15", URL: "https://app.acme.com/tickets",
		})
	}
	store.activities = append(store.activities, model.ActivityRecord{
		ID: 11, Date: "2024-01-15", URL: "https://other.com",
	})

	engine := NewEngine(store)

	count, err := engine.AutoAssignUnclassified("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	count, err = engine.AutoAssignUnclassified("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "second pass on unchanged data assigns nothing")

	// The non-matching record stays unassigned, not errored.
	assert.Nil(t, store.activities[10].ProjectID)
}

func TestAutoAssignScopedToDate(t *testing.T) {
	store := newFakeRuleStore()
	store.addProject(1, "Acme")
	store.addRule(1, model.RuleURLDomain, "acme.com", false, 100)
	store.activities = []model.ActivityRecord{
		{ID: 1, Date: "2024-01-15", URL: "https://acme.com"},
		{ID: 2, Date: "2024-01-16", URL: "https://acme.com"},
	}

	engine := NewEngine(store)
	count, err := engine.AutoAssignUnclassified("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Nil(t, store.activities[1].ProjectID)
}

func TestReloadRulesPicksUpNewRules(t *testing.T) {
	store := newFakeRuleStore()
	store.addProject(1, "Acme")
	engine := NewEngine(store)

	rec := model.ActivityRecord{URL: "https://acme.com"}
	_, ok, err := engine.Match(&rec)
	require.NoError(t, err)
	assert.False(t, ok)

	// A rule written behind the cache's back is invisible until reload.
	store.addRule(1, model.RuleURLDomain, "acme.com", false, 100)
	_, ok, err = engine.Match(&rec)
	require.NoError(t, err)
	assert.False(t, ok)

	engine.ReloadRules()
	projectID, ok, err := engine.Match(&rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), projectID)
}

func TestClassify(t *testing.T) {
	t.Run("sets project and optionally inserts rule", func(t *testing.T) {
		store := newFakeRuleStore()
		store.addProject(1, "Acme")
		store.activities = []model.ActivityRecord{
			{ID: 1, Date: "2024-01-15", URL: "https://acme.com"},
			{ID: 2, Date: "2024-01-15", URL: "https://acme.com"},
		}

		engine := NewEngine(store)
		err := engine.Classify([]int64{1, 2}, 1, &model.ProjectRule{
			RuleType: model.RuleURLDomain,
			Pattern:  "acme.com",
			Priority: 100,
		})
		require.NoError(t, err)

		require.NotNil(t, store.activities[0].ProjectID)
		assert.Equal(t, int64(1), *store.activities[0].ProjectID)
		require.Len(t, store.rules, 1)
		assert.Equal(t, int64(1), store.rules[0].ProjectID)

		// The new rule is live without an explicit reload.
		projectID, ok, err := engine.Match(&model.ActivityRecord{URL: "https://acme.com"})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(1), projectID)
	})

	t.Run("rejects unknown project", func(t *testing.T) {
		store := newFakeRuleStore()
		engine := NewEngine(store)
		err := engine.Classify([]int64{1}, 99, nil)
		assert.Error(t, err)
	})
}
