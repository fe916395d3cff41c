package exam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"exam-drill-service/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if got := len(c.Patterns()); got != 4 {
		t.Fatalf("expected 4 exam patterns, got %d", got)
	}
	p, err := c.Lookup("gate")
	if err != nil {
		t.Fatalf("lookup gate: %v", err)
	}
	if p.Code != "GATE" || len(p.Types) != 3 {
		t.Fatalf("unexpected GATE pattern %+v", p)
	}
	if _, err := c.Lookup("JEE"); !errors.Is(err, domain.ErrUnknownExamType) {
		t.Fatalf("expected unknown exam error, got %v", err)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":        "exams: []",
		"missing code": "exams:\n  - name: X\n",
		"bad type":     "exams:\n  - code: X\n    types: [ESSAY]\n",
		"duplicate":    "exams:\n  - code: X\n  - code: x\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.yaml")
	if err := os.WriteFile(path, []byte("exams:\n  - code: JEE\n    rule: Mostly NAT.\n    types: [NAT]\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := c.Lookup("jee"); err != nil {
		t.Fatalf("expected JEE in override: %v", err)
	}
	if _, err := c.Lookup("GATE"); err == nil {
		t.Fatalf("override should replace the built-in catalog")
	}
}
