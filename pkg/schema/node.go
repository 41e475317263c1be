// Package schema declares the action document model: the registry of named
// schema nodes the validator walks, the typed Go structs an accepted
// document decodes into, and loaders for JSON and YAML sources.
package schema

// Kind enumerates the schema node kinds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBoolean
	KindObject
	KindArray
	KindUnion
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	case KindRef:
		return "ref"
	}
	return "unknown"
}

// Node is one schema node. Fields are populated based on Kind.
type Node struct {
	Kind        Kind
	Description string

	// String
	Enum   []string
	Const  *string
	Format string

	// Object. Objects are always closed.
	Fields []Field

	// Array
	Items    *Node
	MinItems int

	// Union. With Tag set the union is discriminated; otherwise Branches
	// are tried in order.
	Tag      string
	Variants []Variant
	Branches []*Node

	// Ref
	Ref string
}

// Field is a declared object property.
type Field struct {
	Name     string
	Node     *Node
	Required bool
	Nullable bool // an explicit null counts as absent
}

// Variant maps one discriminant value to a registered type name.
type Variant struct {
	Value string
	Type  string
}

// Variant returns the type name registered for a discriminant value.
func (n *Node) Variant(value string) (string, bool) {
	for _, v := range n.Variants {
		if v.Value == value {
			return v.Type, true
		}
	}
	return "", false
}

// Field returns the declared field with the given name.
func (n *Node) Field(name string) (Field, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func String() *Node  { return &Node{Kind: KindString} }
func Number() *Node  { return &Node{Kind: KindNumber} }
func Integer() *Node { return &Node{Kind: KindInteger} }
func Boolean() *Node { return &Node{Kind: KindBoolean} }

// Enum is a string restricted to the given values.
func Enum(values ...string) *Node {
	return &Node{Kind: KindString, Enum: values}
}

// Const is a string that must equal value.
func Const(value string) *Node {
	return &Node{Kind: KindString, Const: &value}
}

// Formatted is a string checked by the named format predicate.
func Formatted(name string) *Node {
	return &Node{Kind: KindString, Format: name}
}

// Object declares a closed object.
func Object(fields ...Field) *Node {
	return &Node{Kind: KindObject, Fields: fields}
}

// Required declares a required object field.
func Required(name string, n *Node) Field {
	return Field{Name: name, Node: n, Required: true}
}

// Optional declares an optional object field.
func Optional(name string, n *Node) Field {
	return Field{Name: name, Node: n}
}

// Nullable declares an optional object field that also accepts null.
func Nullable(name string, n *Node) Field {
	return Field{Name: name, Node: n, Nullable: true}
}

// ArrayOf declares an array whose items match item.
func ArrayOf(item *Node, minItems int) *Node {
	return &Node{Kind: KindArray, Items: item, MinItems: minItems}
}

// Tagged declares a union discriminated by the string field tag.
func Tagged(tag string, variants ...Variant) *Node {
	return &Node{Kind: KindUnion, Tag: tag, Variants: variants}
}

// AnyOf declares an undiscriminated union.
func AnyOf(branches ...*Node) *Node {
	return &Node{Kind: KindUnion, Branches: branches}
}

// Ref refers to a registered type by name. Resolution is deferred to
// validation so definitions may refer to each other in any order.
func Ref(name string) *Node {
	return &Node{Kind: KindRef, Ref: name}
}

// Describe sets the node description and returns the node.
func (n *Node) Describe(d string) *Node {
	n.Description = d
	return n
}
