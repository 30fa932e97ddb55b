// Package classify maps free-text business names and descriptions to a coarse
// business-type tag using ordered keyword rules.
package classify

import (
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-engine/internal/model"
)

// Rule associates a tag with the keywords that indicate it. A keyword matches
// as a substring of the lower-cased text.
type Rule struct {
	Tag      string   `yaml:"tag" json:"tag"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultRules returns the built-in vocabulary. Order is the tie-break: the
// first rule with a matching keyword wins.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: "restaurant", Keywords: []string{"restaurant", "café", "bistro", "eatery", "diner", "food"}},
		{Tag: "retail", Keywords: []string{"shop", "store", "boutique", "retail", "market"}},
		{Tag: "service", Keywords: []string{"service", "repair", "maintenance", "cleaning"}},
		{Tag: "healthcare", Keywords: []string{"doctor", "clinic", "medical", "health", "dental", "therapy"}},
		{Tag: "fitness", Keywords: []string{"gym", "fitness", "yoga", "pilates", "training"}},
		{Tag: "beauty", Keywords: []string{"salon", "spa", "beauty", "hair", "nails", "massage"}},
		{Tag: "professional", Keywords: []string{"lawyer", "attorney", "accountant", "consultant", "agency"}},
		{Tag: "education", Keywords: []string{"school", "education", "training", "course", "academy"}},
		{Tag: "automotive", Keywords: []string{"auto", "car", "mechanic", "garage", "automotive"}},
		{Tag: "real_estate", Keywords: []string{"real estate", "property", "realtor", "housing"}},
	}
}

// Classifier detects business types. It holds its own copy of the rules and
// is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier over rules. Tags and keywords are folded to lower
// case; rules without a tag or keywords are skipped.
func New(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		tag := strings.TrimSpace(r.Tag)
		if tag == "" {
			continue
		}
		var kws []string
		for _, kw := range r.Keywords {
			if kw = fold(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			continue
		}
		c.rules = append(c.rules, Rule{Tag: tag, Keywords: kws})
	}
	return c
}

// Rules returns a copy of the classifier's rules.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Tag: r.Tag, Keywords: slices.Clone(r.Keywords)}
	}
	return out
}

// Detect returns the tag of the first rule with a keyword contained in text.
func (c *Classifier) Detect(text string) (string, bool) {
	text = fold(text)
	if text == "" {
		return "", false
	}
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Tag, true
			}
		}
	}
	return "", false
}

// Apply sets lead.Industry from the lead's name, then its notes, when the lead
// has neither an industry nor a business type. It reports whether a tag was
// assigned.
func (c *Classifier) Apply(lead *model.Lead) bool {
	if lead.Industry != nil || lead.BusinessType != nil {
		return false
	}
	for _, text := range []string{lead.Name, lead.Notes} {
		if tag, ok := c.Detect(text); ok {
			lead.Industry = &tag
			return true
		}
	}
	return false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule list from a YAML file of the form
//
//	rules:
//	  - tag: restaurant
//	    keywords: [restaurant, bistro]
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read rules %s", path)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "classify: parse rules %s", path)
	}
	if len(f.Rules) == 0 {
		return nil, eris.Errorf("classify: rules file %s defines no rules", path)
	}
	return f.Rules, nil
}
