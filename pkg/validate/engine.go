package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/ormasoftchile/actionspec/pkg/format"
	"github.com/ormasoftchile/actionspec/pkg/schema"
)

// ErrUnknownSchema is returned when the engine is asked to validate against a
// name the registry does not hold.
var ErrUnknownSchema = errors.New("unknown schema")

// Diagnostic is one schema violation. Path is a JSON pointer into the
// document; the root is "".
type Diagnostic struct {
	Path    string         `json:"path"`
	Keyword string         `json:"keyword"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// String renders the diagnostic as "<path> <message>".
func (d Diagnostic) String() string {
	return d.Path + " " + d.Message
}

// Result is the outcome of one engine run.
type Result struct {
	Diagnostics []Diagnostic
}

// Valid reports whether no diagnostic was produced.
func (r Result) Valid() bool { return len(r.Diagnostics) == 0 }

// Strings renders every diagnostic, or nil when valid.
func (r Result) Strings() []string {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = d.String()
	}
	return out
}

// Engine walks a document tree against the nodes of a registry. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	reg *schema.Registry
}

// NewEngine returns an engine over reg.
func NewEngine(reg *schema.Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the registry the engine validates against.
func (e *Engine) Registry() *schema.Registry { return e.reg }

// Validate checks doc against the registered type name. Violations are
// reported in the Result; the error is reserved for configuration faults.
func (e *Engine) Validate(name string, doc any) (Result, error) {
	n, ok := e.reg.Resolve(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	w := &walker{reg: e.reg}
	w.node(n, doc, "")
	if w.err != nil {
		return Result{}, w.err
	}
	return Result{Diagnostics: w.diags}, nil
}

type walker struct {
	reg   *schema.Registry
	diags []Diagnostic
	err   error
}

func (w *walker) add(path, keyword, msg string, params map[string]any) {
	w.diags = append(w.diags, Diagnostic{Path: path, Keyword: keyword, Message: msg, Params: params})
}

func (w *walker) fault(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *walker) node(n *schema.Node, v any, path string) {
	switch n.Kind {
	case schema.KindRef:
		w.ref(n.Ref, v, path)
	case schema.KindObject:
		w.object(n, v, path)
	case schema.KindArray:
		w.array(n, v, path)
	case schema.KindUnion:
		if n.Tag != "" {
			w.tagged(n, v, path)
		} else {
			w.anyOf(n, v, path)
		}
	case schema.KindString:
		w.str(n, v, path)
	case schema.KindNumber:
		if !isNumber(v) {
			w.typeError(path, "number")
		}
	case schema.KindInteger:
		if !isInteger(v) {
			w.typeError(path, "integer")
		}
	case schema.KindBoolean:
		if _, ok := v.(bool); !ok {
			w.typeError(path, "boolean")
		}
	default:
		w.fault(fmt.Errorf("schema node at %q has unsupported kind %s", path, n.Kind))
	}
}

func (w *walker) typeError(path, want string) {
	w.add(path, "type", "must be "+want, map[string]any{"type": want})
}

func (w *walker) ref(name string, v any, path string) {
	n, ok := w.reg.Resolve(name)
	if !ok {
		w.fault(fmt.Errorf("%w: %q at %q", schema.ErrUnresolvedRef, name, path))
		return
	}
	w.node(n, v, path)
}

func (w *walker) object(n *schema.Node, v any, path string) {
	m, ok := v.(map[string]any)
	if !ok {
		w.typeError(path, "object")
		return
	}

	for _, f := range n.Fields {
		if !f.Required {
			continue
		}
		if _, ok := m[f.Name]; !ok {
			w.add(path, "required",
				fmt.Sprintf("must have required property '%s'", f.Name),
				map[string]any{"missingProperty": f.Name})
		}
	}

	var extra []string
	for k := range m {
		if _, ok := n.Field(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		w.add(path, "additionalProperties", "must NOT have additional properties",
			map[string]any{"additionalProperty": k})
	}

	for _, f := range n.Fields {
		fv, ok := m[f.Name]
		if !ok || (fv == nil && f.Nullable) {
			continue
		}
		w.node(f.Node, fv, path+"/"+escapePointer(f.Name))
	}
}

func (w *walker) array(n *schema.Node, v any, path string) {
	items, ok := v.([]any)
	if !ok {
		w.typeError(path, "array")
		return
	}
	if len(items) < n.MinItems {
		w.add(path, "minItems",
			fmt.Sprintf("must NOT have fewer than %d items", n.MinItems),
			map[string]any{"limit": n.MinItems})
	}
	for i, item := range items {
		w.node(n.Items, item, fmt.Sprintf("%s/%d", path, i))
	}
}

// tagged validates a discriminated union. Every failure to pick a variant
// stops the walk at this node.
func (w *walker) tagged(n *schema.Node, v any, path string) {
	m, ok := v.(map[string]any)
	if !ok {
		w.typeError(path, "object")
		return
	}
	raw, ok := m[n.Tag]
	if !ok {
		w.add(path, "required",
			fmt.Sprintf("must have required property '%s'", n.Tag),
			map[string]any{"missingProperty": n.Tag})
		return
	}
	tag, ok := raw.(string)
	if !ok {
		w.typeError(path+"/"+escapePointer(n.Tag), "string")
		return
	}
	typ, ok := n.Variant(tag)
	if !ok {
		w.add(path, "discriminator",
			fmt.Sprintf("value of tag %q must be in oneOf", n.Tag),
			map[string]any{"tag": n.Tag, "tagValue": tag})
		return
	}
	w.ref(typ, v, path)
}

// anyOf accepts the first branch without diagnostics. Otherwise it reports
// the branch that came closest (fewest diagnostics, earliest on ties).
func (w *walker) anyOf(n *schema.Node, v any, path string) {
	var best []Diagnostic
	for i, b := range n.Branches {
		sub := &walker{reg: w.reg}
		sub.node(b, v, path)
		if sub.err != nil {
			w.fault(sub.err)
			return
		}
		if len(sub.diags) == 0 {
			return
		}
		if i == 0 || len(sub.diags) < len(best) {
			best = sub.diags
		}
	}
	w.diags = append(w.diags, best...)
	w.add(path, "anyOf", "must match a schema in anyOf", nil)
}

func (w *walker) str(n *schema.Node, v any, path string) {
	s, ok := v.(string)
	if !ok {
		w.typeError(path, "string")
		return
	}
	if n.Const != nil && s != *n.Const {
		w.add(path, "const", "must be equal to constant",
			map[string]any{"allowedValue": *n.Const})
	}
	if len(n.Enum) > 0 && !slices.Contains(n.Enum, s) {
		w.add(path, "enum", "must be equal to one of the allowed values",
			map[string]any{"allowedValues": n.Enum})
	}
	if n.Format != "" {
		pred, ok := format.Lookup(n.Format)
		if !ok {
			w.fault(fmt.Errorf("schema node at %q uses unknown format %q", path, n.Format))
			return
		}
		if !pred(s) {
			w.add(path, "format", fmt.Sprintf("must match format %q", n.Format),
				map[string]any{"format": n.Format})
		}
	}
}

func isNumber(v any) bool {
	switch t := v.(type) {
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := t.Float64()
		return err == nil
	}
	return false
}

// isInteger accepts integral floats, so 1.0 counts as an integer.
func isInteger(v any) bool {
	switch t := v.(type) {
	case float64:
		return isNumber(t) && t == math.Trunc(t)
	case float32:
		return isNumber(t) && float64(t) == math.Trunc(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return true
		}
		f, err := t.Float64()
		return err == nil && f == math.Trunc(f) && !math.IsInf(f, 0)
	}
	return false
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string {
	return pointerEscaper.Replace(s)
}
