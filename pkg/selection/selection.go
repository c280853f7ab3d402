// Package selection decides which source paths take part in a backup.
// Rules are ordered include/exclude glob patterns; the first rule that
// applies to a path wins, and paths no rule applies to are included.
package selection

import (
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/types"
)

// Rule is one ordered selection rule
type Rule struct {
	// Include reports whether a matching path is kept or dropped
	Include bool

	// Pattern is a path.Match glob, matched against the slash-separated
	// path relative to the source root. A pattern that matches a
	// directory applies to everything beneath it.
	Pattern string
}

// Rules is an ordered rule list
type Rules struct {
	rules []Rule
}

// New validates patterns and builds a rule list
func New(rules []Rule) (*Rules, error) {
	for _, r := range rules {
		if r.Pattern == "" {
			return nil, errors.New(errors.ErrRuleInvalid, "empty pattern")
		}
		if _, err := path.Match(r.Pattern, "probe"); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "bad pattern %q", r.Pattern)
		}
	}
	return &Rules{rules: rules}, nil
}

// Selected reports whether relPath takes part in the backup. relPath is
// slash-separated and relative to the source root.
func (r *Rules) Selected(relPath string) bool {
	if r == nil {
		return true
	}
	relPath = strings.Trim(relPath, "/")
	for _, rule := range r.rules {
		if matches(rule.Pattern, relPath) {
			return rule.Include
		}
	}
	return true
}

// matches applies pattern to relPath and to each of its ancestors, so
// that excluding a directory excludes its subtree
func matches(pattern, relPath string) bool {
	for p := relPath; p != "" && p != "."; p = path.Dir(p) {
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
		if path.Dir(p) == p {
			break
		}
	}
	return false
}

// yaml document shape: a list of single-action rules under "rules"
type ruleDoc struct {
	Include string `yaml:"include,omitempty"`
	Exclude string `yaml:"exclude,omitempty"`
}

type rulesDoc struct {
	Rules []ruleDoc `yaml:"rules"`
}

// LoadFile reads an ordered rule list from a YAML file
func LoadFile(fsys types.FS, filePath string) (*Rules, error) {
	data, err := fsys.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRulesLoad, "cannot read rules file %s", filePath)
	}
	return Parse(data)
}

// Parse reads an ordered rule list from YAML content
func Parse(data []byte) (*Rules, error) {
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrRulesLoad, "cannot parse rules file")
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, rd := range doc.Rules {
		switch {
		case rd.Include != "" && rd.Exclude != "":
			return nil, errors.Newf(errors.ErrRuleInvalid,
				"rule %d sets both include and exclude", i)
		case rd.Include != "":
			rules = append(rules, Rule{Include: true, Pattern: rd.Include})
		case rd.Exclude != "":
			rules = append(rules, Rule{Include: false, Pattern: rd.Exclude})
		default:
			return nil, errors.Newf(errors.ErrRuleInvalid,
				"rule %d sets neither include nor exclude", i)
		}
	}
	return New(rules)
}
