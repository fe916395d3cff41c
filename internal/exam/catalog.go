// Package exam holds the exam patterns a quiz can be generated for.
package exam

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"exam-drill-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Pattern describes one exam and how its questions are usually mixed.
type Pattern struct {
	Code  string                `yaml:"code" json:"code"`
	Name  string                `yaml:"name" json:"name"`
	Rule  string                `yaml:"rule" json:"rule"`
	Types []domain.QuestionType `yaml:"types" json:"types"`
}

// Catalog is an ordered, case-insensitive lookup of exam patterns.
type Catalog struct {
	patterns []Pattern
	byCode   map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded exam catalog: %v", err))
	}
	return c
}

// Load reads a catalog override from path, or returns the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Exams []Pattern `yaml:"exams"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode exam catalog: %w", err)
	}
	if len(doc.Exams) == 0 {
		return nil, fmt.Errorf("exam catalog has no exams")
	}
	c := &Catalog{byCode: make(map[string]int, len(doc.Exams))}
	for _, p := range doc.Exams {
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			return nil, fmt.Errorf("exam catalog entry without code")
		}
		for _, t := range p.Types {
			if !t.Valid() {
				return nil, fmt.Errorf("exam %s: unknown question type %q", p.Code, t)
			}
		}
		key := strings.ToUpper(p.Code)
		if _, dup := c.byCode[key]; dup {
			return nil, fmt.Errorf("exam %s listed twice", p.Code)
		}
		c.byCode[key] = len(c.patterns)
		c.patterns = append(c.patterns, p)
	}
	return c, nil
}

// Lookup finds a pattern by code, ignoring case.
func (c *Catalog) Lookup(code string) (Pattern, error) {
	i, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", domain.ErrUnknownExamType, code)
	}
	return c.patterns[i], nil
}

// Patterns lists every pattern in catalog order.
func (c *Catalog) Patterns() []Pattern {
	return append([]Pattern(nil), c.patterns...)
}
