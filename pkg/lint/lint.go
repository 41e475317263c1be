// Package lint evaluates configurable expression rules against each linked
// action of a schema-valid document.
package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/actionspec/pkg/schema"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// Phase is the ValidationError phase lint findings carry.
const Phase = "lint"

// Rule is one lint rule. Expr must evaluate to true for a linked action to
// pass; When, if set, restricts the rule to actions for which it is true.
//
// Both expressions see:
//
//	action   the linked action object
//	index    its position in links
//	document the whole document
type Rule struct {
	Name     string `yaml:"name"     json:"name"`
	When     string `yaml:"when"     json:"when,omitempty"`
	Expr     string `yaml:"expr"     json:"expr"`
	Message  string `yaml:"message"  json:"message"`
	Severity string `yaml:"severity" json:"severity,omitempty"` // error, warning (default)
}

// DefaultRules are applied when no rules are configured.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "label-not-blank",
			Expr:    `trim(action.label) != ""`,
			Message: "label is blank",
		},
		{
			Name:    "https-links",
			When:    `action.type == "link"`,
			Expr:    `action.href startsWith "https://"`,
			Message: "link href should use https",
		},
		{
			Name:    "batch-size",
			When:    `action.type == "tx-multi"`,
			Expr:    `len(action.txData) <= 10`,
			Message: "more than 10 transactions in one batch",
		},
	}
}

type compiled struct {
	Rule
	when  *vm.Program
	check *vm.Program
}

// Linter holds compiled rules. It is safe for concurrent use.
type Linter struct {
	rules []compiled
}

// New compiles rules. Every rule needs a name and an expression; severity
// must be empty, "warning" or "error".
func New(rules []Rule) (*Linter, error) {
	l := &Linter{}
	env := sampleEnv()
	seen := map[string]bool{}
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("lint rule %d: name is required", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("lint rule %q: defined twice", r.Name)
		}
		seen[r.Name] = true
		switch r.Severity {
		case "":
			r.Severity = validate.SeverityWarning
		case validate.SeverityWarning, validate.SeverityError:
		default:
			return nil, fmt.Errorf("lint rule %q: unknown severity %q", r.Name, r.Severity)
		}
		if strings.TrimSpace(r.Expr) == "" {
			return nil, fmt.Errorf("lint rule %q: expr is required", r.Name)
		}
		if r.Message == "" {
			r.Message = fmt.Sprintf("rule %s failed", r.Name)
		}

		c := compiled{Rule: r}
		var err error
		c.check, err = expr.Compile(r.Expr, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		if strings.TrimSpace(r.When) != "" {
			c.when, err = expr.Compile(r.When, expr.Env(env), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("compile rule %q when: %w", r.Name, err)
			}
		}
		l.rules = append(l.rules, c)
	}
	return l, nil
}

// Rules returns the configured rules in evaluation order.
func (l *Linter) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	for i, c := range l.rules {
		out[i] = c.Rule
	}
	return out
}

// Lint evaluates every rule against every linked action of doc. A rule
// whose expression fails at runtime is reported as an error finding.
func (l *Linter) Lint(doc any) []*validate.ValidationError {
	root, ok := plain(doc).(map[string]any)
	if !ok {
		return nil
	}
	links, _ := root["links"].([]any)

	var out []*validate.ValidationError
	for i, link := range links {
		path := fmt.Sprintf("/links/%d", i)
		env := envFor(root, link, i)
		for _, r := range l.rules {
			if r.when != nil {
				ok, err := run(r.when, env)
				if err != nil {
					out = append(out, finding(validate.SeverityError, path, "rule %s: %s", r.Name, err))
					continue
				}
				if !ok {
					continue
				}
			}
			ok, err := run(r.check, env)
			switch {
			case err != nil:
				out = append(out, finding(validate.SeverityError, path, "rule %s: %s", r.Name, err))
			case !ok:
				out = append(out, finding(r.Severity, path, "%s (%s)", r.Message, r.Name))
			}
		}
	}
	return out
}

// Check adapts the linter to the validator pipeline.
func (l *Linter) Check() validate.Check {
	return func(doc any, _ *schema.Action) []*validate.ValidationError {
		return l.Lint(doc)
	}
}

func run(p *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(p, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return bool (got %T)", out)
	}
	return b, nil
}

func finding(severity, path, msg string, args ...any) *validate.ValidationError {
	return &validate.ValidationError{
		Phase:    Phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: severity,
	}
}

func sampleEnv() map[string]any {
	return map[string]any{
		"action":   map[string]any{},
		"index":    0,
		"document": map[string]any{},
	}
}

// plain copies the tree, converting json.Number so expressions can compare
// numbers with literals.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
