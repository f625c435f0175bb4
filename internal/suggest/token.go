package suggest

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
)

// tokenKind records which activity field a clustering token came from; it
// decides which rule type the detected project suggests.
type tokenKind int

const (
	tokenNone tokenKind = iota
	tokenDomain
	tokenFolder
	tokenKeyword
)

// stopwords are title words too generic to anchor a cluster.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "to": {}, "for": {}, "with": {}, "new": {}, "untitled": {},
	"window": {}, "tab": {}, "home": {}, "page": {}, "my": {},
}

// genericSegments are folder names that say nothing about the project on
// their own; for these the parent segment is folded into the token.
var genericSegments = map[string]struct{}{
	"src": {}, "source": {}, "main": {}, "master": {}, "build": {},
	"dist": {}, "code": {}, "dev": {}, "work": {}, "app": {},
}

// deriveToken produces the clustering token for one unassigned activity:
// domain for URL-bearing activities, trailing folder segments for folder-style
// context, otherwise the first meaningful window-title keyword. Returns
// tokenNone when no usable signal exists.
func deriveToken(rec *model.ActivityRecord) (string, tokenKind) {
	if host := tokenHost(rec.URL); host != "" {
		return host, tokenDomain
	}
	if folder := folderToken(rec.Context); folder != "" {
		return folder, tokenFolder
	}
	if keyword := titleKeyword(rec.WindowTitle); keyword != "" {
		return keyword, tokenKeyword
	}
	return "", tokenNone
}

// tokenHost extracts the lowercased host of a URL with any "www." stripped.
func tokenHost(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// folderToken derives a token from folder-style context: the last path
// segment, or parent/last when the last segment is too generic to stand alone.
func folderToken(context string) string {
	if !strings.Contains(context, "/") {
		return ""
	}
	segments := splitPathSegments(context)
	if len(segments) == 0 {
		return ""
	}

	last := strings.ToLower(segments[len(segments)-1])
	if _, generic := genericSegments[last]; generic && len(segments) > 1 {
		parent := strings.ToLower(segments[len(segments)-2])
		return parent + "/" + last
	}
	return last
}

func splitPathSegments(p string) []string {
	var segments []string
	for _, segment := range strings.Split(p, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// titleKeyword extracts the first meaningful lowercased word of a window
// title, splitting on common title separators.
func titleKeyword(title string) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		switch r {
		case ' ', '\t', '-', '_', '|', ':', ',', '.', '·', '–', '—', '(', ')', '[', ']':
			return true
		}
		return false
	})

	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		return word
	}
	return ""
}

// domainRoot reduces a host to its registrable-ish root, e.g.
// "app.acme.com" -> "acme.com". Used for brand grouping, not matching.
func domainRoot(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// displayName turns a token into a human-friendly suggested name:
// "acme-site" -> "Acme Site", "app.acme.com" -> "Acme", "web/src" -> "Web Src".
func displayName(token string, kind tokenKind) string {
	base := token
	if kind == tokenDomain {
		base = strings.Split(domainRoot(token), ".")[0]
	}

	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '/' || r == ' '
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
