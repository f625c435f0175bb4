package model

// Brand is the top-level client grouping entity. Brand names are globally
// unique.
type Brand struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sortOrder"`
}

// Project is the unit activities are classified into. Project names are
// unique within their brand.
type Project struct {
	ID        int64  `json:"id"`
	BrandID   int64  `json:"brandId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sortOrder"`
}

// RuleType identifies which activity field a classification rule inspects.
type RuleType string

const (
	RuleTerminalFolder RuleType = "terminal-folder" // last path segment of the extra context
	RuleURLDomain      RuleType = "url-domain"      // URL host, subdomain-inclusive
	RuleURLPath        RuleType = "url-path"        // URL path
	RulePageTitle      RuleType = "page-title"      // window title of a browser page
	RuleDesignFile     RuleType = "design-file"     // extra context or URL of a design document
	RuleBundleID       RuleType = "bundle-id"       // exact stable app identifier
	RuleWindowTitle    RuleType = "window-title"    // window title
)

// ValidRuleType reports whether t is one of the supported rule types.
func ValidRuleType(t RuleType) bool {
	switch t {
	case RuleTerminalFolder, RuleURLDomain, RuleURLPath, RulePageTitle,
		RuleDesignFile, RuleBundleID, RuleWindowTitle:
		return true
	}
	return false
}

// ProjectRule auto-assigns matching activities to a project. Literal patterns
// match case-insensitively; regex patterns are compiled as written. Lower
// priority evaluates first, rule id breaks ties.
type ProjectRule struct {
	ID        int64    `json:"id"`
	ProjectID int64    `json:"projectId"`
	RuleType  RuleType `json:"ruleType"`
	Pattern   string   `json:"pattern"`
	IsRegex   bool     `json:"isRegex"`
	Priority  int      `json:"priority"`
}
