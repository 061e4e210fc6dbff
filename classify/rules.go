package classify

import "regexp"

// Rule maps a message pattern to a category.
type Rule struct {
	Pattern  *regexp.Regexp
	Category Category
}

// RuleSet is an ordered list of rules. The first matching rule wins, so more
// specific patterns must be listed before broader ones ("connection timeout"
// has to hit the timeout rule, not the network rule).
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set preserving the given order.
func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: append([]Rule(nil), rules...)}
}

// DefaultRules returns the built-in ordered rule table.
func DefaultRules() *RuleSet {
	return NewRuleSet(
		Rule{regexp.MustCompile(`(?i)timed?[ _-]?out|deadline exceeded|timeout`), CategoryTimeout},
		Rule{regexp.MustCompile(`(?i)unauthorized|authentication|invalid[ _-]?(api[ _-]?key|token)|expired.{0,20}(key|token|credential)|401`), CategoryAuth},
		Rule{regexp.MustCompile(`(?i)permission denied|forbidden|access denied|not permitted|403`), CategoryPermission},
		Rule{regexp.MustCompile(`(?i)rate[ _-]?limit|too many requests|overloaded|quota|429`), CategoryNetwork},
		Rule{regexp.MustCompile(`(?i)connection|network|dns|socket|econn|unreachable|broken pipe|tls`), CategoryNetwork},
		Rule{regexp.MustCompile(`(?i)invalid|validation|malformed request|bad request|missing (required|field|argument)|400`), CategoryValidation},
		Rule{regexp.MustCompile(`(?i)exit(ed)? (code|status)|spawn|subprocess|command (failed|not found)|sigkill|sigterm|process`), CategorySubprocess},
		Rule{regexp.MustCompile(`(?i)parse|parsing|unmarshal|decode|unexpected (token|end)|malformed (json|response)|syntax`), CategoryParsing},
		Rule{regexp.MustCompile(`(?i)config(uration)?|environment variable|not configured|unsupported option`), CategoryConfiguration},
	)
}

// Classify maps a raw error message to a category. It never fails: unmatched
// input degrades to CategoryUnknown.
func (rs *RuleSet) Classify(message string) Category {
	if rs == nil {
		return CategoryUnknown
	}
	for _, r := range rs.rules {
		if r.Pattern != nil && r.Pattern.MatchString(message) {
			return r.Category
		}
	}
	return CategoryUnknown
}

// Append returns a copy of rs with extra rules appended after the existing
// ones. The receiver is not modified.
func (rs *RuleSet) Append(rules ...Rule) *RuleSet {
	if rs == nil {
		return NewRuleSet(rules...)
	}
	out := make([]Rule, 0, len(rs.rules)+len(rules))
	out = append(out, rs.rules...)
	out = append(out, rules...)
	return &RuleSet{rules: out}
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}
