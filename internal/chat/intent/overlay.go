package intent

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Overlay carries site-specific pattern additions loaded from YAML.
// Overlays can only append patterns to existing intents; they can never
// add intents or change the evaluation order.
type Overlay struct {
	Intents map[string]OverlayPatterns `yaml:"intents"`
}

// OverlayPatterns holds extra patterns for one intent.
type OverlayPatterns struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// NewWithOverlayFile creates a classifier with the built-in rules extended by
// the overlay at path. An empty path yields the plain built-in classifier.
func NewWithOverlayFile(path string) (*Classifier, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent overlay: %w", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse intent overlay: %w", err)
	}

	if err := c.applyOverlay(overlay); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Classifier) applyOverlay(overlay Overlay) error {
	for name, patterns := range overlay.Intents {
		idx := c.ruleIndex(Tag(name))
		if idx < 0 {
			return fmt.Errorf("intent overlay references unknown intent %q", name)
		}

		pos, err := compileChecked(patterns.Positive)
		if err != nil {
			return fmt.Errorf("intent overlay %q: %w", name, err)
		}
		neg, err := compileChecked(patterns.Negative)
		if err != nil {
			return fmt.Errorf("intent overlay %q: %w", name, err)
		}

		c.rules[idx].positive = append(c.rules[idx].positive, pos...)
		c.rules[idx].negative = append(c.rules[idx].negative, neg...)
	}
	return nil
}

func (c *Classifier) ruleIndex(tag Tag) int {
	for i, r := range c.rules {
		if r.tag == tag {
			return i
		}
	}
	return -1
}

func compileChecked(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
