package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Decode converts a validated document tree into the typed model. It does
// not validate; run the tree through the validator first.
func Decode(tree any) (*Action, error) {
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode action: expected object, got %T", tree)
	}

	var a Action
	if err := decodeInto(without(m, "links"), &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	if raw, ok := m["links"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("decode action: links must be an array, got %T", raw)
		}
		for i, item := range items {
			la, err := decodeLinkedAction(item)
			if err != nil {
				return nil, fmt.Errorf("decode links[%d]: %w", i, err)
			}
			a.Links = append(a.Links, la)
		}
	}
	return &a, nil
}

func decodeLinkedAction(item any) (LinkedAction, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return LinkedAction{}, fmt.Errorf("expected object, got %T", item)
	}
	tag, _ := m[DiscriminatorField].(string)
	la := LinkedAction{Type: LinkedActionType(tag)}

	var err error
	switch la.Type {
	case LinkedLink:
		la.Link = new(LinkAction)
		err = decodeInto(m, la.Link)
	case LinkedReference:
		la.Reference = new(ReferenceAction)
		err = decodeInto(m, la.Reference)
	case LinkedTx:
		la.Tx = new(TxAction)
		err = decodeInto(m, la.Tx)
	case LinkedTxMulti:
		la.TxMulti = new(TxMultiAction)
		err = decodeInto(m, la.TxMulti)
	case LinkedTransfer:
		la.Transfer, err = decodeTransfer(m)
	default:
		err = fmt.Errorf("unknown linked action type %q", tag)
	}
	return la, err
}

func decodeTransfer(m map[string]any) (*TransferAction, error) {
	var t TransferAction
	if err := decodeInto(without(m, "value"), &t); err != nil {
		return nil, err
	}
	switch v := m["value"].(type) {
	case string:
		t.Value.Wei = v
	case map[string]any:
		p := new(Parameter)
		if err := decodeInto(v, p); err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		t.Value.Parameter = p
	default:
		return nil, fmt.Errorf("value: unexpected %T", v)
	}
	return &t, nil
}

func decodeInto(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  integerHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// without returns a shallow copy of m minus key.
func without(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// integerHook converts integral numbers for integer fields. The validator
// accepts spellings such as 1.0 and 1e3 as integers, which json.Number
// cannot parse directly. Values outside the int64 range are an error rather
// than a silent wrap.
func integerHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		var err error
		if f, err = v.Float64(); err != nil {
			return nil, fmt.Errorf("%s is not a number", v)
		}
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", data)
	}
	// -2^63 is exact as a float64; 2^63 is the first value past MaxInt64.
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return nil, fmt.Errorf("%v is out of range for int64", data)
	}
	return int64(f), nil
}
