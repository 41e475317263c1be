package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id stamped on the exported action schema.
const SchemaID = "https://github.com/ormasoftchile/actionspec/schemas/action-v1.json"

// defsPrefix is the JSON pointer prefix for registered definitions.
const defsPrefix = "#/$defs/"

// BuildJSONSchema renders the registry as a JSON Schema Draft 2020-12
// document rooted at the given registered type. Every registered name
// becomes an entry under $defs.
func BuildJSONSchema(reg *Registry, root string) (*jsonschema.Schema, error) {
	if _, ok := reg.Resolve(root); !ok {
		return nil, fmt.Errorf("export schema: root type %q is not registered", root)
	}
	s := &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID(SchemaID),
		Ref:         defsPrefix + root,
		Title:       "Action document",
		Description: "Wire format of a blockchain action document (Draft 2020-12)",
		Definitions: make(jsonschema.Definitions, len(reg.order)),
	}
	for _, name := range reg.order {
		s.Definitions[name] = exportNode(reg.defs[name])
	}
	return s, nil
}

// GenerateJSONSchema produces the indented JSON Schema document for the
// Action root of reg.
func GenerateJSONSchema(reg *Registry) ([]byte, error) {
	s, err := BuildJSONSchema(reg, TypeAction)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal action schema: %w", err)
	}
	return data, nil
}

func exportNode(n *Node) *jsonschema.Schema {
	s := &jsonschema.Schema{Description: n.Description}
	switch n.Kind {
	case KindString:
		s.Type = "string"
		s.Format = n.Format
		if n.Const != nil {
			s.Const = *n.Const
		}
		for _, v := range n.Enum {
			s.Enum = append(s.Enum, v)
		}
	case KindNumber:
		s.Type = "number"
	case KindInteger:
		s.Type = "integer"
	case KindBoolean:
		s.Type = "boolean"
	case KindObject:
		s.Type = "object"
		s.Properties = jsonschema.NewProperties()
		for _, f := range n.Fields {
			prop := exportNode(f.Node)
			if f.Nullable {
				prop = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{prop, {Type: "null"}}}
			}
			s.Properties.Set(f.Name, prop)
			if f.Required {
				s.Required = append(s.Required, f.Name)
			}
		}
		s.AdditionalProperties = jsonschema.FalseSchema
	case KindArray:
		s.Type = "array"
		s.Items = exportNode(n.Items)
		if n.MinItems > 0 {
			m := uint64(n.MinItems)
			s.MinItems = &m
		}
	case KindUnion:
		if n.Tag != "" {
			// One branch per distinct variant type; the variants' own
			// const or enum tag fields keep the branches exclusive.
			seen := make(map[string]bool, len(n.Variants))
			for _, v := range n.Variants {
				if seen[v.Type] {
					continue
				}
				seen[v.Type] = true
				s.OneOf = append(s.OneOf, &jsonschema.Schema{Ref: defsPrefix + v.Type})
			}
			s.Required = []string{n.Tag}
			s.Extras = map[string]any{
				"discriminator": map[string]any{"propertyName": n.Tag},
			}
			break
		}
		for _, b := range n.Branches {
			s.AnyOf = append(s.AnyOf, exportNode(b))
		}
	case KindRef:
		s.Ref = defsPrefix + n.Ref
	}
	return s
}
