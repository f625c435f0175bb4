package suggest

import (
	"sort"
	"strings"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
)

// Group qualification thresholds: enough repeated signal to not be one-off
// noise. A smaller group still qualifies when it spans multiple applications,
// since cross-app repetition is a stronger project signal.
const (
	minGroupActivities  = 3
	minCrossAppSize     = 2
	minCrossAppDistinct = 2
)

// tokenGroup is one cluster of unassigned activities sharing a token.
type tokenGroup struct {
	token        string
	kind         tokenKind
	records      []*model.ActivityRecord
	apps         map[string]struct{}
	totalSeconds int
}

func (g *tokenGroup) qualifies() bool {
	if len(g.records) >= minGroupActivities {
		return true
	}
	return len(g.records) >= minCrossAppSize && len(g.apps) >= minCrossAppDistinct
}

// cluster groups unassigned activities by derived token, dropping dismissed
// tokens before grouping and unqualified groups after. The result is ordered
// by total time descending, token ascending.
func cluster(activities []model.ActivityRecord, dismissed map[string]struct{}) []*tokenGroup {
	groups := make(map[string]*tokenGroup)

	for i := range activities {
		rec := &activities[i]
		token, kind := deriveToken(rec)
		if kind == tokenNone {
			continue
		}
		if _, skip := dismissed[token]; skip {
			continue
		}

		group, ok := groups[token]
		if !ok {
			group = &tokenGroup{token: token, kind: kind, apps: make(map[string]struct{})}
			groups[token] = group
		}
		group.records = append(group.records, rec)
		group.apps[rec.AppName] = struct{}{}
		group.totalSeconds += rec.DurationSeconds
	}

	var qualified []*tokenGroup
	for _, group := range groups {
		if group.qualifies() {
			qualified = append(qualified, group)
		}
	}
	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].totalSeconds != qualified[j].totalSeconds {
			return qualified[i].totalSeconds > qualified[j].totalSeconds
		}
		return qualified[i].token < qualified[j].token
	})
	return qualified
}

// suggestedRules derives the rules a detected project proposes: one per
// distinguishing field observed, most specific type first.
func suggestedRules(group *tokenGroup) []model.SuggestedRule {
	var rules []model.SuggestedRule

	switch group.kind {
	case tokenDomain:
		rules = append(rules, model.SuggestedRule{RuleType: model.RuleURLDomain, Pattern: group.token})
	case tokenFolder:
		pattern := group.token
		if idx := strings.LastIndex(pattern, "/"); idx >= 0 {
			pattern = pattern[idx+1:]
		}
		rules = append(rules, model.SuggestedRule{RuleType: model.RuleTerminalFolder, Pattern: pattern})
	case tokenKeyword:
		rules = append(rules, model.SuggestedRule{RuleType: model.RuleWindowTitle, Pattern: group.token})
	}

	// A folder segment shared by every record in a non-folder group is a
	// second distinguishing field worth a rule of its own.
	if group.kind != tokenFolder {
		if segment := commonFolderSegment(group.records); segment != "" {
			rules = append(rules, model.SuggestedRule{RuleType: model.RuleTerminalFolder, Pattern: segment})
		}
	}
	return rules
}

// commonFolderSegment returns the folder token shared by all records, or ""
// when any record lacks one or they disagree.
func commonFolderSegment(records []*model.ActivityRecord) string {
	common := ""
	for _, rec := range records {
		segment := folderToken(rec.Context)
		if segment == "" {
			return ""
		}
		if common == "" {
			common = segment
		} else if segment != common {
			return ""
		}
	}
	return common
}

// dominantApp picks the group's most frequent application name, breaking ties
// lexicographically so grouping stays deterministic.
func dominantApp(group *tokenGroup) string {
	counts := make(map[string]int)
	for _, rec := range group.records {
		counts[rec.AppName]++
	}

	best, bestCount := "", -1
	for app, count := range counts {
		if count > bestCount || (count == bestCount && app < best) {
			best, bestCount = app, count
		}
	}
	return best
}

// brandKeyAndName derives the higher-level grouping for a detected project:
// domain tokens group under their domain root, everything else under the
// dominant application.
func brandKeyAndName(group *tokenGroup) (string, string) {
	if group.kind == tokenDomain {
		root := domainRoot(group.token)
		return "domain:" + root, displayName(root, tokenDomain)
	}
	app := dominantApp(group)
	return "app:" + app, app
}

// groupBrands assembles qualified token groups into detected brands, ordered
// by total time descending, name ascending.
func groupBrands(groups []*tokenGroup) []model.DetectedBrand {
	brands := make(map[string]*model.DetectedBrand)
	var order []string

	for _, group := range groups {
		key, name := brandKeyAndName(group)
		brand, ok := brands[key]
		if !ok {
			brand = &model.DetectedBrand{Name: name}
			brands[key] = brand
			order = append(order, key)
		}

		brand.Projects = append(brand.Projects, model.DetectedProject{
			Token:         group.token,
			Name:          displayName(group.token, group.kind),
			ActivityCount: len(group.records),
			AppCount:      len(group.apps),
			TotalSeconds:  group.totalSeconds,
			Rules:         suggestedRules(group),
		})
		brand.TotalSeconds += group.totalSeconds
	}

	result := make([]model.DetectedBrand, 0, len(order))
	for _, key := range order {
		result = append(result, *brands[key])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSeconds != result[j].TotalSeconds {
			return result[i].TotalSeconds > result[j].TotalSeconds
		}
		return result[i].Name < result[j].Name
	})
	return result
}
