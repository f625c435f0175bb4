package model

// SuggestedRule is a classification rule proposed by the suggestion engine.
type SuggestedRule struct {
	RuleType RuleType `json:"ruleType"`
	Pattern  string   `json:"pattern"`
}

// DetectedProject is a cluster of unassigned activities that looks like one
// project. Token is the stable clustering key and doubles as the dismissal
// key; Name is derived deterministically from it.
type DetectedProject struct {
	Token         string          `json:"token"`
	Name          string          `json:"name"`
	ActivityCount int             `json:"activityCount"`
	AppCount      int             `json:"appCount"`
	TotalSeconds  int             `json:"totalSeconds"`
	Rules         []SuggestedRule `json:"rules"`
}

// DetectedBrand groups detected projects that share a higher-level token.
type DetectedBrand struct {
	Name         string            `json:"name"`
	TotalSeconds int               `json:"totalSeconds"`
	Projects     []DetectedProject `json:"projects"`
}
