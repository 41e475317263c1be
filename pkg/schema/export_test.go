package schema

import (
	"encoding/json"
	"testing"
)

func TestGenerateJSONSchema(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	data, err := GenerateJSONSchema(reg)
	if err != nil {
		t.Fatalf("GenerateJSONSchema: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("exported schema is not JSON: %v", err)
	}
	if doc["$schema"] != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("$schema = %v", doc["$schema"])
	}
	if doc["$ref"] != "#/$defs/Action" {
		t.Errorf("$ref = %v", doc["$ref"])
	}
	defs, ok := doc["$defs"].(map[string]any)
	if !ok {
		t.Fatal("missing $defs")
	}
	if len(defs) != len(reg.Names()) {
		t.Errorf("$defs has %d entries, want %d", len(defs), len(reg.Names()))
	}

	action := defs["Action"].(map[string]any)
	if action["additionalProperties"] != false {
		t.Errorf("Action.additionalProperties = %v, want false", action["additionalProperties"])
	}
	required := action["required"].([]any)
	if len(required) != 4 || required[0] != "title" {
		t.Errorf("Action.required = %v", required)
	}

	// InputParameter serves ten discriminant values but appears once.
	param := defs["Parameter"].(map[string]any)
	if n := len(param["oneOf"].([]any)); n != 6 {
		t.Errorf("Parameter.oneOf has %d branches, want 6", n)
	}

	call := defs["ContractCall"].(map[string]any)
	props := call["properties"].(map[string]any)
	if f := props["address"].(map[string]any)["format"]; f != "address" {
		t.Errorf("ContractCall.address format = %v", f)
	}

	// Nullable fields accept null next to their own schema.
	value := props["value"].(map[string]any)
	branches, ok := value["anyOf"].([]any)
	if !ok || len(branches) != 2 {
		t.Fatalf("ContractCall.value = %v, want anyOf with a null branch", value)
	}
	if branches[0].(map[string]any)["format"] != "wei" || branches[1].(map[string]any)["type"] != "null" {
		t.Errorf("ContractCall.value branches = %v", branches)
	}
	if _, ok := props["address"].(map[string]any)["anyOf"]; ok {
		t.Error("required field ContractCall.address should not accept null")
	}
}

func TestBuildJSONSchema_UnknownRoot(t *testing.T) {
	reg, _ := DefaultRegistry()
	if _, err := BuildJSONSchema(reg, "Nope"); err == nil {
		t.Fatal("expected error for unknown root")
	}
}
