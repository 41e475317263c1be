package lint

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ormasoftchile/actionspec/pkg/schema"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

func doc(links ...any) map[string]any {
	return map[string]any{
		"title":       "t",
		"icon":        "i",
		"description": "d",
		"label":       "l",
		"links":       links,
	}
}

func TestDefaultRules(t *testing.T) {
	l, err := New(DefaultRules())
	if err != nil {
		t.Fatalf("compile default rules: %v", err)
	}
	findings := l.Lint(doc(
		map[string]any{"type": "link", "label": "Docs", "href": "https://example.com"},
		map[string]any{"type": "link", "label": "  ", "href": "http://example.com"},
	))
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want 2", findings)
	}
	for _, f := range findings {
		if f.Path != "/links/1" {
			t.Errorf("finding at %s, want /links/1", f.Path)
		}
		if f.Severity != validate.SeverityWarning || f.Phase != Phase {
			t.Errorf("finding = %+v", f)
		}
	}
	if !strings.Contains(findings[0].Message, "label-not-blank") {
		t.Errorf("first finding = %q", findings[0].Message)
	}
	if !strings.Contains(findings[1].Message, "https") {
		t.Errorf("second finding = %q", findings[1].Message)
	}
}

func TestLint_NumbersFromJSON(t *testing.T) {
	l, err := New([]Rule{{
		Name:     "base-only",
		When:     `action.type == "tx"`,
		Expr:     `action.chainId == 8453`,
		Message:  "only Base is supported",
		Severity: "error",
	}})
	if err != nil {
		t.Fatal(err)
	}
	findings := l.Lint(doc(
		map[string]any{"type": "tx", "chainId": json.Number("8453")},
		map[string]any{"type": "tx", "chainId": json.Number("1")},
		map[string]any{"type": "link"},
	))
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want 1", findings)
	}
	if findings[0].Path != "/links/1" || findings[0].Severity != validate.SeverityError {
		t.Errorf("finding = %+v", findings[0])
	}
	if findings[0].Message != "only Base is supported (base-only)" {
		t.Errorf("message = %q", findings[0].Message)
	}
}

func TestLint_IndexAndDocument(t *testing.T) {
	l, err := New([]Rule{{
		Name: "first-is-link",
		When: `index == 0`,
		Expr: `action.type == "link" && document.title != ""`,
	}})
	if err != nil {
		t.Fatal(err)
	}
	findings := l.Lint(doc(map[string]any{"type": "tx"}, map[string]any{"type": "tx"}))
	if len(findings) != 1 || findings[0].Path != "/links/0" {
		t.Fatalf("findings = %v", findings)
	}
	if findings[0].Message != "rule first-is-link failed (first-is-link)" {
		t.Errorf("message = %q", findings[0].Message)
	}
}

func TestLint_RuntimeError(t *testing.T) {
	l, err := New([]Rule{{Name: "bad-len", Expr: `len(action.missing) > 0`}})
	if err != nil {
		t.Fatal(err)
	}
	findings := l.Lint(doc(map[string]any{"type": "link"}))
	if len(findings) != 1 || findings[0].Severity != validate.SeverityError {
		t.Fatalf("findings = %v", findings)
	}
}

func TestLint_NoLinks(t *testing.T) {
	l, _ := New(DefaultRules())
	if got := l.Lint(map[string]any{"title": "x"}); got != nil {
		t.Errorf("findings = %v, want none", got)
	}
	if got := l.Lint("not an object"); got != nil {
		t.Errorf("findings = %v, want none", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{"missing name", []Rule{{Expr: "true"}}, "name is required"},
		{"missing expr", []Rule{{Name: "x"}}, "expr is required"},
		{"duplicate", []Rule{{Name: "x", Expr: "true"}, {Name: "x", Expr: "true"}}, "defined twice"},
		{"bad severity", []Rule{{Name: "x", Expr: "true", Severity: "fatal"}}, "unknown severity"},
		{"syntax", []Rule{{Name: "x", Expr: "action.type =="}}, "compile rule"},
		{"not bool", []Rule{{Name: "x", Expr: `"yes"`}}, "compile rule"},
		{"bad when", []Rule{{Name: "x", Expr: "true", When: "(("}}, "when"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rules)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCheck_InPipeline(t *testing.T) {
	l, err := New([]Rule{{Name: "no-http", When: `action.type == "link"`, Expr: `action.href startsWith "https://"`, Severity: "error"}})
	if err != nil {
		t.Fatal(err)
	}
	reg, _ := schema.DefaultRegistry()
	v := validate.New(reg, validate.WithChecks(l.Check()))

	report := v.Validate(doc(map[string]any{"type": "link", "label": "Docs", "href": "http://example.com"}))
	if report.Valid() {
		t.Fatal("expected lint error to fail the report")
	}
	if report.Errors[0].Phase != Phase {
		t.Errorf("phase = %q", report.Errors[0].Phase)
	}
}

func TestEnvAndEval(t *testing.T) {
	d := doc(
		map[string]any{"type": "link", "label": "Docs", "href": "https://example.com"},
		map[string]any{"type": "tx", "label": "Go", "chainId": json.Number("8453")},
	)

	env, err := Env(d, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out, err := Eval(`action.chainId + 1`, env); err != nil || out != 8454 {
		t.Errorf("Eval chainId = %v, %v", out, err)
	}
	if out, err := Eval(`len(document.links)`, env); err != nil || out != 2 {
		t.Errorf("Eval len = %v, %v", out, err)
	}

	env, err = Env(d, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out, err := Eval(`document.title`, env); err != nil || out != "t" {
		t.Errorf("Eval title = %v, %v", out, err)
	}
	if _, err := Eval(`action.(`, env); err == nil {
		t.Error("expected compile error")
	}

	if _, err := Env(d, 2); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("Env(2) error = %v", err)
	}
	if _, err := Env([]any{}, 0); err == nil {
		t.Error("expected error for non-object document")
	}
}
