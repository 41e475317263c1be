package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/actionspec/pkg/format"
	"github.com/ormasoftchile/actionspec/pkg/schema"
)

// Conformance validates documents with an independent JSON Schema
// implementation compiled from the exported registry. Its verdict should
// always agree with the engine's.
type Conformance struct {
	sch *sjsonschema.Schema
}

// NewConformance exports reg and compiles it with the action formats
// asserted.
func NewConformance(reg *schema.Registry) (*Conformance, error) {
	data, err := schema.GenerateJSONSchema(reg)
	if err != nil {
		return nil, err
	}
	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	c.AssertFormat()
	for _, name := range format.Names() {
		pred, _ := format.Lookup(name)
		c.RegisterFormat(&sjsonschema.Format{Name: name, Validate: formatCheck(name, pred)})
	}
	if err := c.AddResource(schema.SchemaID, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(schema.SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Conformance{sch: sch}, nil
}

// formatCheck adapts a predicate. Formats only constrain strings.
func formatCheck(name string, pred format.Func) func(any) error {
	return func(v any) error {
		s, ok := v.(string)
		if !ok || pred(s) {
			return nil
		}
		return fmt.Errorf("%q is not a valid %s", s, name)
	}
}

// Check returns the leaf violations for doc, or nil when it conforms. The
// error reports documents that cannot be re-encoded as JSON.
func (c *Conformance) Check(doc any) ([]string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	inst, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	err = c.sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *sjsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}, nil
	}
	var out []string
	for _, u := range ve.BasicOutput().Errors {
		if u.Error != nil {
			out = append(out, u.InstanceLocation+" "+u.Error.String())
		}
	}
	if len(out) == 0 {
		out = append(out, ve.Error())
	}
	return out, nil
}
