package services

import (
	"regexp"
	"sort"
	"strings"

	"ctfcore/models"
)

// NormalizeFlag trims and lower-cases a submitted flag. Both sides of
// an exact comparison go through this.
func NormalizeFlag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// RenderTemplate substitutes {{key}} placeholders with instance
// parameters. Deliberately not a template engine: challenge content is
// author-controlled but still rendered per team, so the language is
// restricted to plain variable substitution. Longer keys are replaced
// first so a key can never partially shadow another.
func RenderTemplate(template string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(template, "{{") {
		return template
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		template = strings.ReplaceAll(template, "{{"+key+"}}", params[key])
		template = strings.ReplaceAll(template, "{{ "+key+" }}", params[key])
	}
	return template
}

// MatchFlag evaluates a normalized submission against the challenge's
// ordered matcher list and reports whether any matcher is satisfied.
// The first satisfied matcher wins; evaluation stops there.
//
// Exact matchers compare the normalized pattern for equality; an empty
// pattern never matches, so a matcher with an empty flag is permanently
// unsolvable (kept as-is, clients rely on it). Regex matchers are
// case-insensitive and must consume the entire submission.
func MatchFlag(matchers []*models.FlagMatcher, params map[string]string, submission string) bool {
	for _, matcher := range matchers {
		pattern := matcher.Pattern
		if params != nil {
			pattern = RenderTemplate(pattern, params)
		}

		switch matcher.Kind {
		case models.MatcherExact:
			normalized := NormalizeFlag(pattern)
			if normalized != "" && normalized == submission {
				return true
			}
		case models.MatcherRegex:
			re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
			if err != nil {
				// An invalid pattern cannot match anything, same
				// terminal behavior as the empty exact flag.
				continue
			}
			if re.MatchString(submission) {
				return true
			}
		}
	}
	return false
}
