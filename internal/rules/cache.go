package rules

import (
	"regexp"
	"sync"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// RuleSource loads the full rule snapshot from the store.
type RuleSource interface {
	LoadAllProjectRules() ([]model.ProjectRule, error)
}

// RuleCache holds the current rule snapshot in priority order, with regex
// patterns pre-compiled. It loads lazily and serves matches until invalidated;
// call Invalidate after any rule CRUD so the next match sees fresh rules.
type RuleCache struct {
	source RuleSource

	mu       sync.RWMutex
	loaded   bool
	rules    []model.ProjectRule
	compiled map[int64]*regexp.Regexp
}

// NewRuleCache creates an empty cache backed by source.
func NewRuleCache(source RuleSource) *RuleCache {
	return &RuleCache{source: source}
}

// Rules returns the cached snapshot, loading it first if needed. The returned
// slice is shared; callers must not mutate it.
func (c *RuleCache) Rules() ([]model.ProjectRule, map[int64]*regexp.Regexp, error) {
	c.mu.RLock()
	if c.loaded {
		rules, compiled := c.rules, c.compiled
		c.mu.RUnlock()
		return rules, compiled, nil
	}
	c.mu.RUnlock()
	return c.reload()
}

// Invalidate drops the snapshot; the next Rules call reloads from the store.
func (c *RuleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.rules = nil
	c.compiled = nil
}

// Reload forces an immediate refresh from the store.
func (c *RuleCache) Reload() error {
	_, _, err := c.reload()
	return err
}

func (c *RuleCache) reload() ([]model.ProjectRule, map[int64]*regexp.Regexp, error) {
	rules, err := c.source.LoadAllProjectRules()
	if err != nil {
		return nil, nil, err
	}

	// Patterns are validated at insert time, so compile failures here mean a
	// hand-edited database; such rules are skipped with a warning.
	compiled := make(map[int64]*regexp.Regexp)
	for _, rule := range rules {
		if !rule.IsRegex {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			util.LogWarnf("Skipping rule %d with invalid pattern %q: %v", rule.ID, rule.Pattern, err)
			continue
		}
		compiled[rule.ID] = re
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.rules = rules
	c.compiled = compiled
	return rules, compiled, nil
}
