package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/actionspec/pkg/schema"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := schema.DefaultRegistry()
	require.NoError(t, err)
	return NewEngine(reg)
}

func TestEngine_Diagnostics(t *testing.T) {
	lowercase := "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

	tests := []struct {
		name string
		doc  any
		want []string
	}{
		{
			name: "minimal action",
			doc:  action(),
		},
		{
			name: "empty links",
			doc:  with(action(), "links", arr{}),
		},
		{
			name: "missing description",
			doc:  without(action(), "description"),
			want: []string{" must have required property 'description'"},
		},
		{
			name: "root not an object",
			doc:  "action",
			want: []string{" must be object"},
		},
		{
			name: "nil root",
			doc:  nil,
			want: []string{" must be object"},
		},
		{
			name: "array root",
			doc:  arr{action()},
			want: []string{" must be object"},
		},
		{
			name: "additional root property",
			doc:  with(action(), "extra", true),
			want: []string{" must NOT have additional properties"},
		},
		{
			name: "required then additional then declared order",
			doc:  with(with(without(action(), "title"), "zeta", 1), "label", 5),
			want: []string{
				" must have required property 'title'",
				" must NOT have additional properties",
				"/label must be string",
			},
		},
		{
			name: "one diagnostic per additional property",
			doc:  with(with(action(), "b", 1), "a", 2),
			want: []string{
				" must NOT have additional properties",
				" must NOT have additional properties",
			},
		},
		{
			name: "links not an array",
			doc:  with(action(), "links", obj{}),
			want: []string{"/links must be array"},
		},
		{
			name: "unknown link type short-circuits",
			doc:  action(obj{"type": "swap", "label": "Swap"}),
			want: []string{`/links/0 value of tag "type" must be in oneOf`},
		},
		{
			name: "link without type",
			doc:  action(obj{"label": "Docs", "href": "https://example.com"}),
			want: []string{"/links/0 must have required property 'type'"},
		},
		{
			name: "link type not a string",
			doc:  action(obj{"type": 7, "label": "Docs"}),
			want: []string{"/links/0/type must be string"},
		},
		{
			name: "link item not an object",
			doc:  action("https://example.com"),
			want: []string{"/links/0 must be object"},
		},
		{
			name: "link missing href",
			doc:  action(obj{"type": "link", "label": "Docs"}),
			want: []string{"/links/0 must have required property 'href'"},
		},
		{
			name: "reference action bad cid",
			doc:  action(obj{"type": "reference-action", "label": "Next", "cid": "bafy-not-v0"}),
			want: []string{`/links/0/cid must match format "cid"`},
		},
		{
			name: "reference action",
			doc:  action(obj{"type": "reference-action", "label": "Next", "cid": cidA}),
		},
		{
			name: "tx with parameters",
			doc:  action(txLink(call(constant(addrB), input("number", "amount")))),
		},
		{
			name: "tx chainId as string",
			doc:  action(with(txLink(call()), "chainId", "8453")),
			want: []string{"/links/0/chainId must be integer"},
		},
		{
			name: "tx chainId fractional",
			doc:  action(with(txLink(call()), "chainId", 1.5)),
			want: []string{"/links/0/chainId must be integer"},
		},
		{
			name: "tx chainId integral float",
			doc:  action(with(txLink(call()), "chainId", float64(8453))),
		},
		{
			name: "tx chainId json number",
			doc:  action(with(txLink(call()), "chainId", json.Number("8453"))),
		},
		{
			name: "short address",
			doc:  action(txLink(with(call(), "address", "0x124421515"))),
			want: []string{`/links/0/txData/address must match format "address"`},
		},
		{
			name: "lower-case address fails checksum",
			doc:  action(txLink(with(call(), "address", lowercase))),
			want: []string{`/links/0/txData/address must match format "address"`},
		},
		{
			name: "bad abi",
			doc:  action(txLink(with(call(), "abi", "transfer(address, uint256)"))),
			want: []string{`/links/0/txData/abi must match format "abi"`},
		},
		{
			name: "wei value",
			doc:  action(txLink(with(call(), "value", "1000"))),
		},
		{
			name: "non-decimal wei value",
			doc:  action(txLink(with(call(), "value", "0x10"))),
			want: []string{`/links/0/txData/value must match format "wei"`},
		},
		{
			name: "unknown parameter type",
			doc:  action(txLink(call(obj{"type": "slider", "label": "x"}))),
			want: []string{`/links/0/txData/parameters/0 value of tag "type" must be in oneOf`},
		},
		{
			name: "bad computed operation",
			doc: action(txLink(call(constant("a"), obj{
				"type":      "computed",
				"operation": "subtract",
				"values":    arr{constant(1), constant(2)},
			}))),
			want: []string{"/links/0/txData/parameters/1/operation must be equal to one of the allowed values"},
		},
		{
			name: "computed needs two values",
			doc: action(txLink(call(obj{
				"type":      "computed",
				"operation": "add",
				"values":    arr{constant(1)},
			}))),
			want: []string{"/links/0/txData/parameters/0/values must NOT have fewer than 2 items"},
		},
		{
			name: "computed nests parameters",
			doc: action(txLink(call(obj{
				"type":      "computed",
				"operation": "multiply",
				"values":    arr{input("number", "qty"), obj{"type": "referenced", "refParameterId": "qty"}},
			}))),
		},
		{
			name: "input with bad scope",
			doc:  action(txLink(call(with(input("text", ""), "scope", "ADMIN")))),
			want: []string{"/links/0/txData/parameters/0/scope must be equal to one of the allowed values"},
		},
		{
			name: "select must be user scoped",
			doc: action(txLink(call(obj{
				"type":    "select",
				"scope":   "GLOBAL",
				"label":   "Pick",
				"options": arr{obj{"label": "One", "value": "1"}},
			}))),
			want: []string{"/links/0/txData/parameters/0/scope must be equal to constant"},
		},
		{
			name: "select needs options",
			doc: action(txLink(call(obj{
				"type":    "select",
				"scope":   "USER",
				"label":   "Pick",
				"options": arr{},
			}))),
			want: []string{"/links/0/txData/parameters/0/options must NOT have fewer than 1 items"},
		},
		{
			name: "contract read",
			doc: action(txLink(call(obj{
				"type":             "contract-read",
				"address":          addrB,
				"abi":              "balanceOf(address)",
				"parameters":       arr{obj{"type": "address", "scope": "GLOBAL", "label": "WALLET_ADDRESS"}},
				"returnValueIndex": 0,
			}))),
		},
		{
			name: "constant array value",
			doc:  action(txLink(call(constant(arr{"a", "b"})))),
		},
		{
			name: "constant empty array value",
			doc:  action(txLink(call(constant(arr{})))),
		},
		{
			name: "constant object value",
			doc:  action(txLink(call(constant(obj{"a": 1})))),
			want: []string{
				"/links/0/txData/parameters/0/value must be string",
				"/links/0/txData/parameters/0/value must match a schema in anyOf",
			},
		},
		{
			name: "constant mixed array value",
			doc:  action(txLink(call(constant(arr{"a", 1})))),
			want: []string{
				"/links/0/txData/parameters/0/value must be string",
				"/links/0/txData/parameters/0/value must match a schema in anyOf",
			},
		},
		{
			name: "tx-multi missing displayConfig",
			doc:  action(without(txMultiLink(call()), "displayConfig")),
			want: []string{"/links/0 must have required property 'displayConfig'"},
		},
		{
			name: "tx-multi with empty txData",
			doc:  action(txMultiLink()),
			want: []string{"/links/0/txData must NOT have fewer than 1 items"},
		},
		{
			name: "tx-multi bad display mode",
			doc:  action(with(txMultiLink(call()), "displayConfig", obj{"displayMode": "stacked"})),
			want: []string{"/links/0/displayConfig/displayMode must be equal to one of the allowed values"},
		},
		{
			name: "transfer missing address",
			doc:  action(without(transferLink("1000"), "address")),
			want: []string{"/links/0 must have required property 'address'"},
		},
		{
			name: "transfer with wei",
			doc:  action(transferLink("1000")),
		},
		{
			name: "transfer with parameter value",
			doc:  action(transferLink(input("number", "amount"))),
		},
		{
			name: "transfer with numeric value",
			doc:  action(transferLink(5)),
			want: []string{
				"/links/0/value must be string",
				"/links/0/value must match a schema in anyOf",
			},
		},
		{
			name: "transfer with non-wei string",
			doc:  action(transferLink("lots")),
			want: []string{
				`/links/0/value must match format "wei"`,
				"/links/0/value must match a schema in anyOf",
			},
		},
		{
			name: "transfer with malformed parameter value",
			doc:  action(transferLink(obj{"type": "constant"})),
			want: []string{
				"/links/0/value must be string",
				"/links/0/value must match a schema in anyOf",
			},
		},
		{
			name: "diagnostics collected across links",
			doc: action(
				obj{"type": "link", "label": 1, "href": "https://example.com"},
				obj{"type": "reference-action", "label": "Next", "cid": "nope"},
			),
			want: []string{
				"/links/0/label must be string",
				`/links/1/cid must match format "cid"`,
			},
		},
		{
			name: "bad nextActionCid",
			doc:  action(with(txLink(call()), "success", obj{"message": "ok", "nextActionCid": "bad"})),
			want: []string{`/links/0/success/nextActionCid must match format "cid"`},
		},
		{
			name: "null links and error",
			doc:  with(with(action(), "links", nil), "error", nil),
		},
		{
			name: "null nextActionCid",
			doc:  action(with(txLink(call()), "success", obj{"message": "ok", "nextActionCid": nil})),
		},
		{
			name: "null optional fields across the model",
			doc: action(
				with(txLink(with(call(
					with(with(input("number", "amount"), "required", nil), "pattern", nil),
					obj{"type": "contract-read", "address": addrA, "abi": "balanceOf(address)",
						"parameters": arr{}, "returnValueIndex": nil},
				), "value", nil)), "success", obj{"message": "ok", "nextActionCid": nil}),
				with(txMultiLink(call()), "displayConfig", obj{"displayMode": "sequential", "renderedTxIndex": nil}),
			),
		},
		{
			name: "null in a field that is not nullable",
			doc:  action(with(txLink(call(with(constant("1"), "id", nil))), "success", obj{"message": "ok"})),
			want: []string{"/links/0/txData/parameters/0/id must be string"},
		},
		{
			name: "null in a required field",
			doc:  action(with(txLink(call()), "success", obj{"message": nil})),
			want: []string{"/links/0/success/message must be string"},
		},
	}

	e := defaultEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Validate(schema.TypeAction, tt.doc)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Strings())
			require.Equal(t, len(tt.want) == 0, res.Valid())
		})
	}
}

func TestEngine_UnknownSchema(t *testing.T) {
	_, err := defaultEngine(t).Validate("Nope", action())
	require.ErrorIs(t, err, ErrUnknownSchema)
}

func TestEngine_CustomRegistry(t *testing.T) {
	reg, err := schema.NewRegistry(
		schema.Definition{Name: "Tree", Node: schema.Object(
			schema.Required("name", schema.String()),
			schema.Optional("children", schema.ArrayOf(schema.Ref("Tree"), 0)),
		)},
	)
	require.NoError(t, err)

	doc := obj{"name": "root", "children": arr{
		obj{"name": "a"},
		obj{"name": "b", "children": arr{obj{}}},
	}}
	res, err := NewEngine(reg).Validate("Tree", doc)
	require.NoError(t, err)
	require.Equal(t, []string{"/children/1/children/0 must have required property 'name'"}, res.Strings())
}

func TestEngine_UnknownFormat(t *testing.T) {
	reg, err := schema.NewRegistry(schema.Definition{Name: "S", Node: schema.Formatted("ipv7")})
	require.NoError(t, err)
	_, err = NewEngine(reg).Validate("S", "x")
	require.Error(t, err)
}

func TestEngine_DiagnosticDetail(t *testing.T) {
	res, err := defaultEngine(t).Validate(schema.TypeAction, without(action(), "icon"))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	require.Equal(t, "", d.Path)
	require.Equal(t, "required", d.Keyword)
	require.Equal(t, "icon", d.Params["missingProperty"])
	require.Equal(t, " must have required property 'icon'", d.String())
}

func TestEngine_PointerEscaping(t *testing.T) {
	reg, err := schema.NewRegistry(schema.Definition{Name: "O", Node: schema.Object(
		schema.Required("a/b", schema.Integer()),
		schema.Required("c~d", schema.Integer()),
	)})
	require.NoError(t, err)
	res, err := NewEngine(reg).Validate("O", obj{"a/b": "x", "c~d": "y"})
	require.NoError(t, err)
	require.Equal(t, []string{"/a~1b must be integer", "/c~0d must be integer"}, res.Strings())
}

func TestEngine_PrimitiveKinds(t *testing.T) {
	reg, err := schema.NewRegistry(
		schema.Definition{Name: "N", Node: schema.Number()},
		schema.Definition{Name: "I", Node: schema.Integer()},
		schema.Definition{Name: "B", Node: schema.Boolean()},
	)
	require.NoError(t, err)
	e := NewEngine(reg)

	accept := map[string][]any{
		"N": {1, int8(-1), uint64(7), float32(1.5), 2.5, json.Number("1e3")},
		"I": {0, int64(-9), uint(3), 4.0, json.Number("42"), json.Number("1e2")},
		"B": {true, false},
	}
	reject := map[string][]any{
		"N": {"1", nil, true, json.Number("abc")},
		"I": {1.25, "1", json.Number("1.5"), nil},
		"B": {"true", 0, nil},
	}
	for name, vals := range accept {
		for _, v := range vals {
			res, err := e.Validate(name, v)
			require.NoError(t, err)
			require.Truef(t, res.Valid(), "%s should accept %#v: %v", name, v, res.Strings())
		}
	}
	for name, vals := range reject {
		for _, v := range vals {
			res, err := e.Validate(name, v)
			require.NoError(t, err)
			require.Falsef(t, res.Valid(), "%s should reject %#v", name, v)
		}
	}
}
