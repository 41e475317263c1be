package schema

import (
	"sync"

	"github.com/ormasoftchile/actionspec/pkg/format"
)

// Registered type names.
const (
	TypeAction                = "Action"
	TypeActionError           = "ActionError"
	TypeLinkedAction          = "LinkedAction"
	TypeLinkAction            = "LinkAction"
	TypeReferenceAction       = "ReferenceAction"
	TypeTxAction              = "TxAction"
	TypeTxMultiAction         = "TxMultiAction"
	TypeTransferAction        = "TransferAction"
	TypeTransferValue         = "TransferValue"
	TypeContractCall          = "ContractCall"
	TypeSuccessMessage        = "SuccessMessage"
	TypeDisplayConfig         = "DisplayConfig"
	TypeParameter             = "Parameter"
	TypeConstantParameter     = "ConstantParameter"
	TypeConstantValue         = "ConstantValue"
	TypeInputParameter        = "InputParameter"
	TypeSelectParameter       = "SelectParameter"
	TypeSelectOption          = "SelectOption"
	TypeComputedParameter     = "ComputedParameter"
	TypeContractReadParameter = "ContractReadParameter"
	TypeReferencedParameter   = "ReferencedParameter"
)

// DiscriminatorField is the tag shared by every union in the action model.
const DiscriminatorField = "type"

// Definitions returns the action document model.
func Definitions() []Definition {
	return []Definition{
		{TypeAction, Object(
			Required("title", String()),
			Required("icon", String()),
			Required("description", String()),
			Required("label", String()),
			Nullable("links", ArrayOf(Ref(TypeLinkedAction), 0)),
			Nullable("error", Ref(TypeActionError)),
		).Describe("Root action document")},

		{TypeActionError, Object(
			Required("message", String()),
		)},

		// Linked actions

		{TypeLinkedAction, Tagged(DiscriminatorField,
			Variant{string(LinkedLink), TypeLinkAction},
			Variant{string(LinkedReference), TypeReferenceAction},
			Variant{string(LinkedTx), TypeTxAction},
			Variant{string(LinkedTxMulti), TypeTxMultiAction},
			Variant{string(LinkedTransfer), TypeTransferAction},
		).Describe("One selectable next step of an action")},

		{TypeLinkAction, Object(
			Required("type", Const(string(LinkedLink))),
			Required("label", String()),
			Required("href", String()),
		)},

		{TypeReferenceAction, Object(
			Required("type", Const(string(LinkedReference))),
			Required("label", String()),
			Required("cid", Formatted(format.NameCID)),
		)},

		{TypeTxAction, Object(
			Required("type", Const(string(LinkedTx))),
			Required("label", String()),
			Required("chainId", Integer()),
			Required("txData", Ref(TypeContractCall)),
			Required("success", Ref(TypeSuccessMessage)),
			Required("error", Ref(TypeActionError)),
		)},

		{TypeTxMultiAction, Object(
			Required("type", Const(string(LinkedTxMulti))),
			Required("label", String()),
			Required("chainId", Integer()),
			Required("txData", ArrayOf(Ref(TypeContractCall), 1)),
			Required("displayConfig", Ref(TypeDisplayConfig)),
			Required("success", Ref(TypeSuccessMessage)),
			Required("error", Ref(TypeActionError)),
		)},

		{TypeTransferAction, Object(
			Required("type", Const(string(LinkedTransfer))),
			Required("label", String()),
			Optional("chainId", Integer()),
			Required("address", Ref(TypeParameter)),
			Required("value", Ref(TypeTransferValue)),
			Required("success", Ref(TypeSuccessMessage)),
			Required("error", Ref(TypeActionError)),
		)},

		{TypeTransferValue, AnyOf(
			Formatted(format.NameWei),
			Ref(TypeParameter),
		).Describe("Wei amount or a parameter resolving to one")},

		{TypeContractCall, Object(
			Required("address", Formatted(format.NameAddress)),
			Required("abi", Formatted(format.NameABI)),
			Required("parameters", ArrayOf(Ref(TypeParameter), 0)),
			Nullable("value", Formatted(format.NameWei)),
		).Describe("Parameters are positional and follow the ABI argument order")},

		{TypeSuccessMessage, Object(
			Required("message", String()),
			Nullable("nextActionCid", Formatted(format.NameCID)),
		)},

		{TypeDisplayConfig, Object(
			Required("displayMode", Enum(string(DisplayCombined), string(DisplaySequential))),
			Nullable("renderedTxIndex", Integer()),
		)},

		// Parameters

		{TypeParameter, Tagged(DiscriminatorField, parameterVariants()...).
			Describe("A value contributed to a contract call or transfer")},

		{TypeConstantParameter, Object(
			Required("type", Const(string(ParamConstant))),
			Optional("id", String()),
			Required("value", Ref(TypeConstantValue)),
		)},

		{TypeConstantValue, AnyOf(
			String(),
			Number(),
			Boolean(),
			ArrayOf(String(), 0),
			ArrayOf(Number(), 0),
			ArrayOf(Boolean(), 0),
		)},

		{TypeInputParameter, Object(
			Required("type", Enum(inputTypeNames()...)),
			Optional("id", String()),
			Required("scope", Enum(string(ScopeUser), string(ScopeGlobal))),
			Required("label", String()),
			Nullable("required", Boolean()),
			Nullable("pattern", String()),
		)},

		{TypeSelectParameter, Object(
			Required("type", Const(string(ParamSelect))),
			Optional("id", String()),
			Required("scope", Const(string(ScopeUser))),
			Required("label", String()),
			Required("options", ArrayOf(Ref(TypeSelectOption), 1)),
			Nullable("required", Boolean()),
			Nullable("pattern", String()),
		)},

		{TypeSelectOption, Object(
			Required("label", String()),
			Required("value", String()),
			Nullable("selected", Boolean()),
		)},

		{TypeComputedParameter, Object(
			Required("type", Const(string(ParamComputed))),
			Optional("id", String()),
			Required("operation", Enum(string(OperationAdd), string(OperationMultiply))),
			Required("values", ArrayOf(Ref(TypeParameter), 2)),
		)},

		{TypeContractReadParameter, Object(
			Required("type", Const(string(ParamContractRead))),
			Optional("id", String()),
			Required("address", Formatted(format.NameAddress)),
			Required("abi", Formatted(format.NameABI)),
			Required("parameters", ArrayOf(Ref(TypeParameter), 0)),
			Nullable("returnValueIndex", Integer()),
		)},

		{TypeReferencedParameter, Object(
			Required("type", Const(string(ParamReferenced))),
			Required("refParameterId", String()),
		)},
	}
}

func parameterVariants() []Variant {
	vs := []Variant{{string(ParamConstant), TypeConstantParameter}}
	for _, t := range InputTypes {
		vs = append(vs, Variant{string(t), TypeInputParameter})
	}
	return append(vs,
		Variant{string(ParamSelect), TypeSelectParameter},
		Variant{string(ParamComputed), TypeComputedParameter},
		Variant{string(ParamContractRead), TypeContractReadParameter},
		Variant{string(ParamReferenced), TypeReferencedParameter},
	)
}

func inputTypeNames() []string {
	names := make([]string, len(InputTypes))
	for i, t := range InputTypes {
		names[i] = string(t)
	}
	return names
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// DefaultRegistry returns the registry for the action model. It is built on
// first use and shared afterwards.
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = NewRegistry(Definitions()...)
	})
	return defaultReg, defaultErr
}
