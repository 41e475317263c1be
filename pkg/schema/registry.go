package schema

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnresolvedRef is returned when a definition refers to a type that is not
// registered.
var ErrUnresolvedRef = errors.New("unresolved schema reference")

// Definition names a schema node.
type Definition struct {
	Name string
	Node *Node
}

// Registry is an immutable set of named schema nodes. It is safe for
// concurrent use once built.
type Registry struct {
	defs  map[string]*Node
	order []string
}

// NewRegistry builds a registry and checks that every reference, including
// discriminated-union variants, resolves to a registered name.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Node, len(defs))}
	for _, d := range defs {
		if d.Name == "" || d.Node == nil {
			return nil, fmt.Errorf("schema definition %q is incomplete", d.Name)
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("schema definition %q registered twice", d.Name)
		}
		r.defs[d.Name] = d.Node
		r.order = append(r.order, d.Name)
	}
	for _, name := range r.order {
		if err := r.checkRefs(name, r.defs[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) checkRefs(owner string, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindRef:
		if _, ok := r.defs[n.Ref]; !ok {
			return fmt.Errorf("%w: %s refers to %q", ErrUnresolvedRef, owner, n.Ref)
		}
	case KindObject:
		for _, f := range n.Fields {
			if err := r.checkRefs(owner, f.Node); err != nil {
				return err
			}
		}
	case KindArray:
		return r.checkRefs(owner, n.Items)
	case KindUnion:
		for _, v := range n.Variants {
			if _, ok := r.defs[v.Type]; !ok {
				return fmt.Errorf("%w: %s variant %q refers to %q", ErrUnresolvedRef, owner, v.Value, v.Type)
			}
		}
		for _, b := range n.Branches {
			if err := r.checkRefs(owner, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// Resolve returns the node registered under name.
func (r *Registry) Resolve(name string) (*Node, bool) {
	n, ok := r.defs[name]
	return n, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}
