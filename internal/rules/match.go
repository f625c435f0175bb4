package rules

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
)

// ruleFields extracts the field values a rule type inspects on a record. Most
// types inspect one field; design-file inspects both the extra context and the
// URL. An empty result means the record cannot match rules of that type.
func ruleFields(t model.RuleType, rec *model.ActivityRecord) []string {
	switch t {
	case model.RuleTerminalFolder:
		if segment := lastPathSegment(rec.Context); segment != "" {
			return []string{segment}
		}
	case model.RuleURLDomain:
		if host := urlHost(rec.URL); host != "" {
			return []string{host}
		}
	case model.RuleURLPath:
		if p := urlPath(rec.URL); p != "" {
			return []string{p}
		}
	case model.RulePageTitle, model.RuleWindowTitle:
		if rec.WindowTitle != "" {
			return []string{rec.WindowTitle}
		}
	case model.RuleDesignFile:
		var fields []string
		if rec.Context != "" {
			fields = append(fields, rec.Context)
		}
		if rec.URL != "" {
			fields = append(fields, rec.URL)
		}
		return fields
	case model.RuleBundleID:
		if rec.BundleID != "" {
			return []string{rec.BundleID}
		}
	}
	return nil
}

// literalMatch applies the non-regex comparison appropriate to the rule type.
// All literal comparisons are case-insensitive.
func literalMatch(t model.RuleType, field, pattern string) bool {
	field = strings.ToLower(field)
	pattern = strings.ToLower(pattern)

	switch t {
	case model.RuleTerminalFolder, model.RuleBundleID:
		return field == pattern
	case model.RuleURLDomain:
		// Subdomain-inclusive: "acme.com" matches "acme.com" and
		// "app.acme.com", never "notacme.com".
		return field == pattern || strings.HasSuffix(field, "."+pattern)
	default:
		return strings.Contains(field, pattern)
	}
}

// matchRule reports whether rule matches rec, using re when the rule is
// regex-flagged. A nil re for a regex rule never matches.
func matchRule(rule model.ProjectRule, re *regexp.Regexp, rec *model.ActivityRecord) bool {
	fields := ruleFields(rule.RuleType, rec)
	if len(fields) == 0 {
		return false
	}

	for _, field := range fields {
		if rule.IsRegex {
			if re != nil && re.MatchString(field) {
				return true
			}
		} else if literalMatch(rule.RuleType, field, rule.Pattern) {
			return true
		}
	}
	return false
}

// Matches reports whether a single rule matches rec, compiling the pattern on
// the fly for regex rules. Used for one-shot passes outside the cached rule
// set, e.g. assignment restricted to freshly accepted rules.
func Matches(rule model.ProjectRule, rec *model.ActivityRecord) (bool, error) {
	var re *regexp.Regexp
	if rule.IsRegex {
		var err error
		re, err = regexp.Compile(rule.Pattern)
		if err != nil {
			return false, fmt.Errorf("compile rule pattern %q: %w", rule.Pattern, err)
		}
	}
	return matchRule(rule, re, rec), nil
}

// lastPathSegment returns the trailing segment of a folder-style context
// string, e.g. "/Users/dev/acme-site" -> "acme-site".
func lastPathSegment(context string) string {
	trimmed := strings.TrimRight(context, "/")
	if trimmed == "" {
		return ""
	}
	segment := path.Base(trimmed)
	if segment == "." || segment == "/" {
		return ""
	}
	return segment
}

// urlHost extracts the lowercased host of a URL, without port.
func urlHost(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// urlPath extracts the path component of a URL.
func urlPath(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Path
}
