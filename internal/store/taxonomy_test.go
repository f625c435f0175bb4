package store

import (
	"testing"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertBrandValidation(t *testing.T) {
	s := openTestStore(t)

	_, err := s.InsertBrand("", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := s.InsertBrand("Acme", "#e06c75")
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)

	_, err = s.InsertBrand("Acme", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	second, err := s.InsertBrand("Globex", "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)
}

func TestBrandLookups(t *testing.T) {
	s := openTestStore(t)
	brand, err := s.InsertBrand("Acme", "#e06c75")
	require.NoError(t, err)

	byID, err := s.GetBrand(brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", byID.Name)

	byName, err := s.GetBrandByName("Acme")
	require.NoError(t, err)
	assert.Equal(t, brand.ID, byName.ID)

	_, err = s.GetBrandByName("Nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteBrand(999), ErrNotFound)
}

func TestProjectValidation(t *testing.T) {
	s := openTestStore(t)
	acme, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)
	globex, err := s.InsertBrand("Globex", "")
	require.NoError(t, err)

	_, err = s.InsertProject(999, "Site", "")
	assert.ErrorIs(t, err, ErrMissingParent)

	_, err = s.InsertProject(acme.ID, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.InsertProject(acme.ID, "Site", "")
	require.NoError(t, err)

	// Unique within the brand, free across brands.
	_, err = s.InsertProject(acme.ID, "Site", "")
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = s.InsertProject(globex.ID, "Site", "")
	assert.NoError(t, err)
}

func TestDeleteBrandCascades(t *testing.T) {
	s := openTestStore(t)
	brand, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)
	project, err := s.InsertProject(brand.ID, "Site", "")
	require.NoError(t, err)
	rule, err := s.InsertRule(model.ProjectRule{
		ProjectID: project.ID, RuleType: model.RuleURLDomain, Pattern: "acme.com", Priority: 100,
	})
	require.NoError(t, err)

	rec := addActivity(t, s, model.ActivityRecord{
		Timestamp: at(9, 0), AppName: "Code", DurationSeconds: 600,
	})
	require.NoError(t, s.SetActivityProject([]int64{rec.ID}, &project.ID))

	require.NoError(t, s.DeleteBrand(brand.ID))

	_, err = s.GetProject(project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rules, err := s.LoadAllProjectRules()
	require.NoError(t, err)
	assert.Empty(t, rules, "rule %d must be gone with its project", rule.ID)

	// The activity survives with its assignment cleared and time untouched.
	got, err := s.GetActivity(rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
	assert.Equal(t, 600, got.DurationSeconds)
	assert.Equal(t, "2026-08-28", got.Date)
	assert.Equal(t, rec.Timestamp.Unix(), got.Timestamp.Unix())
}

func TestMergeBrand(t *testing.T) {
	s := openTestStore(t)
	source, err := s.InsertBrand("Acme Old", "")
	require.NoError(t, err)
	target, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)

	site, err := s.InsertProject(source.ID, "Site", "")
	require.NoError(t, err)
	rule, err := s.InsertRule(model.ProjectRule{
		ProjectID: site.ID, RuleType: model.RuleURLDomain, Pattern: "acme.com", Priority: 100,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.MergeBrand(source.ID, source.ID), ErrInvalidInput)

	require.NoError(t, s.MergeBrand(source.ID, target.ID))

	_, err = s.GetBrand(source.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Project moved, id and rules intact.
	moved, err := s.GetProject(site.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.BrandID)

	rules, err := s.LoadAllProjectRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)
}

func TestMergeBrandNameConflict(t *testing.T) {
	s := openTestStore(t)
	source, err := s.InsertBrand("Acme Old", "")
	require.NoError(t, err)
	target, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)

	_, err = s.InsertProject(source.ID, "Site", "")
	require.NoError(t, err)
	_, err = s.InsertProject(target.ID, "Site", "")
	require.NoError(t, err)

	assert.ErrorIs(t, s.MergeBrand(source.ID, target.ID), ErrDuplicateName)

	// Nothing moved on failure.
	_, err = s.GetBrand(source.ID)
	assert.NoError(t, err)
}

func TestInsertRuleValidation(t *testing.T) {
	s := openTestStore(t)
	brand, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)
	project, err := s.InsertProject(brand.ID, "Site", "")
	require.NoError(t, err)

	tests := []struct {
		name string
		rule model.ProjectRule
		want error
	}{
		{
			name: "unknown rule type",
			rule: model.ProjectRule{ProjectID: project.ID, RuleType: "hostname", Pattern: "x"},
			want: ErrInvalidRule,
		},
		{
			name: "empty pattern",
			rule: model.ProjectRule{ProjectID: project.ID, RuleType: model.RuleURLDomain, Pattern: "  "},
			want: ErrInvalidRule,
		},
		{
			name: "regex that does not compile",
			rule: model.ProjectRule{ProjectID: project.ID, RuleType: model.RuleWindowTitle, Pattern: "[unclosed", IsRegex: true},
			want: ErrInvalidRule,
		},
		{
			name: "missing project",
			rule: model.ProjectRule{ProjectID: 999, RuleType: model.RuleURLDomain, Pattern: "acme.com"},
			want: ErrMissingParent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.InsertRule(tt.rule)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// A rejected regex is never persisted.
	rules, err := s.LoadAllProjectRules()
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadAllProjectRulesOrder(t *testing.T) {
	s := openTestStore(t)
	brand, err := s.InsertBrand("Acme", "")
	require.NoError(t, err)
	project, err := s.InsertProject(brand.ID, "Site", "")
	require.NoError(t, err)

	insert := func(pattern string, priority int) int64 {
		rule, err := s.InsertRule(model.ProjectRule{
			ProjectID: project.ID, RuleType: model.RuleWindowTitle, Pattern: pattern, Priority: priority,
		})
		require.NoError(t, err)
		return rule.ID
	}
	late := insert("c", 200)
	earlyFirst := insert("a", 50)
	earlySecond := insert("b", 50)

	rules, err := s.LoadAllProjectRules()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, earlyFirst, rules[0].ID)
	assert.Equal(t, earlySecond, rules[1].ID)
	assert.Equal(t, late, rules[2].ID)
}

func TestDismissedTokens(t *testing.T) {
	s := openTestStore(t)

	assert.ErrorIs(t, s.DismissToken(""), ErrInvalidInput)

	require.NoError(t, s.DismissToken("acme-site"))
	require.NoError(t, s.DismissToken("acme-site"), "re-dismissal is a no-op")
	require.NoError(t, s.DismissToken("acme.com"))

	tokens, err := s.DismissedTokens()
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	_, ok := tokens["acme-site"]
	assert.True(t, ok)
}
