package schema

import "encoding/json"

// ---------------------------------------------------------------------------
// Action
// ---------------------------------------------------------------------------

// Action is the root document.
type Action struct {
	Title       string         `mapstructure:"title"       json:"title"`
	Icon        string         `mapstructure:"icon"        json:"icon"`
	Description string         `mapstructure:"description" json:"description"`
	Label       string         `mapstructure:"label"       json:"label"`
	Links       []LinkedAction `mapstructure:"-"           json:"links,omitempty"`
	Error       *ActionError   `mapstructure:"error"       json:"error,omitempty"`
}

// ActionError is a message displayed to the user.
type ActionError struct {
	Message string `mapstructure:"message" json:"message"`
}

// ---------------------------------------------------------------------------
// Linked actions
// ---------------------------------------------------------------------------

// LinkedActionType enumerates the linked action variants.
type LinkedActionType string

const (
	LinkedLink      LinkedActionType = "link"
	LinkedReference LinkedActionType = "reference-action"
	LinkedTx        LinkedActionType = "tx"
	LinkedTxMulti   LinkedActionType = "tx-multi"
	LinkedTransfer  LinkedActionType = "transfer-action"
)

// LinkedAction holds exactly one variant, selected by Type.
type LinkedAction struct {
	Type      LinkedActionType
	Link      *LinkAction
	Reference *ReferenceAction
	Tx        *TxAction
	TxMulti   *TxMultiAction
	Transfer  *TransferAction
}

// Label returns the label of the active variant.
func (l LinkedAction) Label() string {
	switch l.Type {
	case LinkedLink:
		return l.Link.Label
	case LinkedReference:
		return l.Reference.Label
	case LinkedTx:
		return l.Tx.Label
	case LinkedTxMulti:
		return l.TxMulti.Label
	case LinkedTransfer:
		return l.Transfer.Label
	}
	return ""
}

// MarshalJSON encodes the active variant.
func (l LinkedAction) MarshalJSON() ([]byte, error) {
	switch l.Type {
	case LinkedLink:
		return json.Marshal(l.Link)
	case LinkedReference:
		return json.Marshal(l.Reference)
	case LinkedTx:
		return json.Marshal(l.Tx)
	case LinkedTxMulti:
		return json.Marshal(l.TxMulti)
	case LinkedTransfer:
		return json.Marshal(l.Transfer)
	}
	return []byte("null"), nil
}

// LinkAction opens a URL.
type LinkAction struct {
	Type  LinkedActionType `mapstructure:"type"  json:"type"`
	Label string           `mapstructure:"label" json:"label"`
	Href  string           `mapstructure:"href"  json:"href"`
}

// ReferenceAction points at another action document by content identifier.
type ReferenceAction struct {
	Type  LinkedActionType `mapstructure:"type"  json:"type"`
	Label string           `mapstructure:"label" json:"label"`
	CID   string           `mapstructure:"cid"   json:"cid"`
}

// TxAction submits one contract call.
type TxAction struct {
	Type    LinkedActionType `mapstructure:"type"    json:"type"`
	Label   string           `mapstructure:"label"   json:"label"`
	ChainID int64            `mapstructure:"chainId" json:"chainId"`
	TxData  ContractCall     `mapstructure:"txData"  json:"txData"`
	Success SuccessMessage   `mapstructure:"success" json:"success"`
	Error   ActionError      `mapstructure:"error"   json:"error"`
}

// TxMultiAction submits an ordered batch of contract calls.
type TxMultiAction struct {
	Type          LinkedActionType `mapstructure:"type"          json:"type"`
	Label         string           `mapstructure:"label"         json:"label"`
	ChainID       int64            `mapstructure:"chainId"       json:"chainId"`
	TxData        []ContractCall   `mapstructure:"txData"        json:"txData"`
	DisplayConfig DisplayConfig    `mapstructure:"displayConfig" json:"displayConfig"`
	Success       SuccessMessage   `mapstructure:"success"       json:"success"`
	Error         ActionError      `mapstructure:"error"         json:"error"`
}

// TransferAction sends native value to an address.
type TransferAction struct {
	Type    LinkedActionType `mapstructure:"type"    json:"type"`
	Label   string           `mapstructure:"label"   json:"label"`
	ChainID *int64           `mapstructure:"chainId" json:"chainId,omitempty"`
	Address Parameter        `mapstructure:"address" json:"address"`
	Value   TransferValue    `mapstructure:"-"       json:"value"`
	Success SuccessMessage   `mapstructure:"success" json:"success"`
	Error   ActionError      `mapstructure:"error"   json:"error"`
}

// TransferValue is either a literal wei amount or a parameter.
type TransferValue struct {
	Wei       string
	Parameter *Parameter
}

// MarshalJSON encodes whichever form is set.
func (v TransferValue) MarshalJSON() ([]byte, error) {
	if v.Parameter != nil {
		return json.Marshal(v.Parameter)
	}
	return json.Marshal(v.Wei)
}

// ContractCall is one contract invocation. Parameters follow the positional
// order of the ABI arguments.
type ContractCall struct {
	Address    string      `mapstructure:"address"    json:"address"`
	ABI        string      `mapstructure:"abi"        json:"abi"`
	Parameters []Parameter `mapstructure:"parameters" json:"parameters"`
	Value      string      `mapstructure:"value"      json:"value,omitempty"`
}

// SuccessMessage is shown after a transaction succeeds.
type SuccessMessage struct {
	Message       string `mapstructure:"message"       json:"message"`
	NextActionCID string `mapstructure:"nextActionCid" json:"nextActionCid,omitempty"`
}

// DisplayMode controls how a multi-transaction action is presented.
type DisplayMode string

const (
	DisplayCombined   DisplayMode = "combined"
	DisplaySequential DisplayMode = "sequential"
)

// DisplayConfig configures a multi-transaction action. RenderedTxIndex only
// applies to the combined mode.
type DisplayConfig struct {
	DisplayMode     DisplayMode `mapstructure:"displayMode"     json:"displayMode"`
	RenderedTxIndex *int        `mapstructure:"renderedTxIndex" json:"renderedTxIndex,omitempty"`
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

// ParameterType is the discriminant of a parameter.
type ParameterType string

const (
	ParamConstant     ParameterType = "constant"
	ParamText         ParameterType = "text"
	ParamEmail        ParameterType = "email"
	ParamURL          ParameterType = "url"
	ParamNumber       ParameterType = "number"
	ParamDate         ParameterType = "date"
	ParamDatetime     ParameterType = "datetime-local"
	ParamCheckbox     ParameterType = "checkbox"
	ParamRadio        ParameterType = "radio"
	ParamTextarea     ParameterType = "textarea"
	ParamAddress      ParameterType = "address"
	ParamSelect       ParameterType = "select"
	ParamComputed     ParameterType = "computed"
	ParamContractRead ParameterType = "contract-read"
	ParamReferenced   ParameterType = "referenced"
)

// InputTypes are the free-form input parameter types.
var InputTypes = []ParameterType{
	ParamText, ParamEmail, ParamURL, ParamNumber, ParamDate, ParamDatetime,
	ParamCheckbox, ParamRadio, ParamTextarea, ParamAddress,
}

// IsInput reports whether t is a user or global input type, including select.
func (t ParameterType) IsInput() bool {
	if t == ParamSelect {
		return true
	}
	for _, in := range InputTypes {
		if t == in {
			return true
		}
	}
	return false
}

// InputScope says who supplies an input value.
type InputScope string

const (
	ScopeUser   InputScope = "USER"
	ScopeGlobal InputScope = "GLOBAL"
)

// Operation combines computed parameter values.
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationMultiply Operation = "multiply"
)

// Parameter is the universal parameter structure. Fields are populated
// based on Type.
type Parameter struct {
	Type ParameterType `mapstructure:"type"`
	ID   string        `mapstructure:"id"`

	// Constant
	Value any `mapstructure:"value"`

	// Input and select
	Scope    InputScope     `mapstructure:"scope"`
	Label    string         `mapstructure:"label"`
	Required *bool          `mapstructure:"required"`
	Pattern  string         `mapstructure:"pattern"`
	Options  []SelectOption `mapstructure:"options"`

	// Computed
	Operation Operation   `mapstructure:"operation"`
	Values    []Parameter `mapstructure:"values"`

	// Contract read
	Address          string      `mapstructure:"address"`
	ABI              string      `mapstructure:"abi"`
	Parameters       []Parameter `mapstructure:"parameters"`
	ReturnValueIndex *int        `mapstructure:"returnValueIndex"`

	// Referenced
	RefParameterID string `mapstructure:"refParameterId"`
}

// SelectOption is one choice of a select input.
type SelectOption struct {
	Label    string `mapstructure:"label"    json:"label"`
	Value    string `mapstructure:"value"    json:"value"`
	Selected *bool  `mapstructure:"selected" json:"selected,omitempty"`
}

// MarshalJSON emits only the fields that belong to the parameter's type.
func (p Parameter) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": p.Type}
	if p.ID != "" {
		m["id"] = p.ID
	}
	switch {
	case p.Type == ParamConstant:
		m["value"] = p.Value
	case p.Type.IsInput():
		m["scope"] = p.Scope
		m["label"] = p.Label
		if p.Required != nil {
			m["required"] = *p.Required
		}
		if p.Pattern != "" {
			m["pattern"] = p.Pattern
		}
		if p.Type == ParamSelect {
			m["options"] = p.Options
		}
	case p.Type == ParamComputed:
		m["operation"] = p.Operation
		m["values"] = nonNil(p.Values)
	case p.Type == ParamContractRead:
		m["address"] = p.Address
		m["abi"] = p.ABI
		m["parameters"] = nonNil(p.Parameters)
		if p.ReturnValueIndex != nil {
			m["returnValueIndex"] = *p.ReturnValueIndex
		}
	case p.Type == ParamReferenced:
		delete(m, "id")
		m["refParameterId"] = p.RefParameterID
	}
	return json.Marshal(m)
}

// MarshalJSON keeps an empty parameter list as [] rather than null.
func (c ContractCall) MarshalJSON() ([]byte, error) {
	type plain ContractCall
	c.Parameters = nonNil(c.Parameters)
	return json.Marshal(plain(c))
}

func nonNil(ps []Parameter) []Parameter {
	if ps == nil {
		return []Parameter{}
	}
	return ps
}
