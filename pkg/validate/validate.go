// Package validate implements the action validation pipeline:
// load → semantic (schema engine) → domain.
package validate

import (
	"fmt"
	"sync"

	"github.com/ormasoftchile/actionspec/pkg/schema"
)

// Phases of the pipeline.
const (
	PhaseStructural = "structural" // decoding the source into a tree
	PhaseSemantic   = "semantic"   // schema engine
	PhaseDomain     = "domain"     // cross-field rules over the typed model
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents one error or warning from the validation pipeline.
type ValidationError struct {
	Phase    string `json:"phase"`
	Path     string `json:"path"` // JSON pointer
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s at %s", e.Phase, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
}

func errorf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: SeverityError,
	}
}

func warningf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: SeverityWarning,
	}
}

// Verdict is the boolean outcome of validating one action document. Errors
// is nil when Valid is true.
type Verdict struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Report carries the full pipeline output for one document.
type Report struct {
	Errors   []*ValidationError `json:"errors,omitempty"`
	Warnings []*ValidationError `json:"warnings,omitempty"`

	// Action is the decoded document. Nil unless the semantic phase passed
	// and the typed model can hold the document.
	Action *schema.Action `json:"-"`
}

// Valid reports whether the report holds no errors. Warnings do not count.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

// Verdict renders the errors the same way ValidateAction does.
func (r *Report) Verdict() Verdict {
	if r.Valid() {
		return Verdict{Valid: true}
	}
	v := Verdict{}
	for _, e := range r.Errors {
		if e.Phase == PhaseSemantic {
			v.Errors = append(v.Errors, e.Path+" "+e.Message)
		} else {
			v.Errors = append(v.Errors, e.Message)
		}
	}
	return v
}

func (r *Report) add(errs ...*ValidationError) {
	for _, e := range errs {
		if e.Severity == SeverityError {
			r.Errors = append(r.Errors, e)
		} else {
			r.Warnings = append(r.Warnings, e)
		}
	}
}

// Check is an extra rule run after the domain phase. It sees both the raw
// tree and the decoded action.
type Check func(doc any, a *schema.Action) []*ValidationError

// Option configures a Validator.
type Option func(*Validator)

// WithChecks appends checks run on structurally valid documents.
func WithChecks(checks ...Check) Option {
	return func(v *Validator) { v.checks = append(v.checks, checks...) }
}

// WithRoot validates against a registered type other than Action.
func WithRoot(name string) Option {
	return func(v *Validator) { v.root = name }
}

// Validator validates action documents against a registry.
type Validator struct {
	engine *Engine
	root   string
	checks []Check
}

// New returns a validator over reg. A registry without the root type is a
// configuration fault and panics on first use.
func New(reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{engine: NewEngine(reg), root: schema.TypeAction}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Engine returns the underlying schema engine.
func (v *Validator) Engine() *Engine { return v.engine }

// ValidateAction checks doc against the action schema only.
func (v *Validator) ValidateAction(doc any) Verdict {
	res := v.semantic(doc)
	if res.Valid() {
		return Verdict{Valid: true}
	}
	return Verdict{Errors: res.Strings()}
}

// Validate runs the semantic phase and, when it passes, the domain phase and
// any configured checks.
func (v *Validator) Validate(doc any) *Report {
	r := &Report{}
	res := v.semantic(doc)
	for _, d := range res.Diagnostics {
		r.add(errorf(PhaseSemantic, d.Path, "%s", d.Message))
	}
	if !r.Valid() || v.root != schema.TypeAction {
		return r
	}

	// A schema-valid document that the typed model cannot hold (an integer
	// beyond int64) keeps its verdict; only the later phases are skipped.
	a, err := schema.Decode(doc)
	if err != nil {
		r.add(warningf(PhaseDomain, "", "domain checks skipped: %s", err))
		return r
	}
	r.Action = a
	r.add(validateDomain(a)...)
	for _, c := range v.checks {
		r.add(c(doc, a)...)
	}
	return r
}

// ValidateFile loads a JSON or YAML file and runs the full pipeline.
func (v *Validator) ValidateFile(path string) (any, *Report) {
	doc, err := schema.LoadFile(path)
	if err != nil {
		return nil, &Report{Errors: []*ValidationError{
			errorf(PhaseStructural, "", "failed to load: %s", err),
		}}
	}
	return doc, v.Validate(doc)
}

func (v *Validator) semantic(doc any) Result {
	res, err := v.engine.Validate(v.root, doc)
	if err != nil {
		panic(fmt.Sprintf("validate: %v", err))
	}
	return res
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the shared validator over schema.DefaultRegistry.
func Default() *Validator {
	defaultOnce.Do(func() {
		reg, err := schema.DefaultRegistry()
		if err != nil {
			panic(fmt.Sprintf("validate: build default registry: %v", err))
		}
		if _, ok := reg.Resolve(schema.TypeAction); !ok {
			panic("validate: default registry has no Action type")
		}
		defaultValidator = New(reg)
	})
	return defaultValidator
}

// ValidateAction checks doc against the action schema using the default
// registry.
func ValidateAction(doc any) Verdict {
	return Default().ValidateAction(doc)
}
