package validate

import (
	"path/filepath"
	"runtime"
)

const (
	addrA = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	addrB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	cidA  = "QmPK1s3pNYLi9ERiq3BDxKa4XosgWwFRQUydHUtz4YgpqB"
)

func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

type obj = map[string]any
type arr = []any

func action(links ...any) obj {
	a := obj{
		"title":       "Mint",
		"icon":        "https://example.com/icon.png",
		"description": "Mint a token",
		"label":       "Mint",
	}
	if links != nil {
		a["links"] = arr(links)
	}
	return a
}

func call(params ...any) obj {
	if params == nil {
		params = arr{}
	}
	return obj{
		"address":    addrA,
		"abi":        "transfer(address,uint256)",
		"parameters": arr(params),
	}
}

func txLink(c obj) obj {
	return obj{
		"type":    "tx",
		"label":   "Send",
		"chainId": 8453,
		"txData":  c,
		"success": obj{"message": "done"},
		"error":   obj{"message": "failed"},
	}
}

func txMultiLink(calls ...any) obj {
	return obj{
		"type":          "tx-multi",
		"label":         "Batch",
		"chainId":       8453,
		"txData":        arr(calls),
		"displayConfig": obj{"displayMode": "combined", "renderedTxIndex": 0},
		"success":       obj{"message": "done"},
		"error":         obj{"message": "failed"},
	}
}

func transferLink(value any) obj {
	return obj{
		"type":    "transfer-action",
		"label":   "Tip",
		"address": constant(addrB),
		"value":   value,
		"success": obj{"message": "thanks"},
		"error":   obj{"message": "failed"},
	}
}

func constant(v any) obj {
	return obj{"type": "constant", "value": v}
}

func input(typ, id string) obj {
	p := obj{"type": typ, "scope": "USER", "label": "Amount"}
	if id != "" {
		p["id"] = id
	}
	return p
}

func without(m obj, keys ...string) obj {
	out := obj{}
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func with(m obj, key string, v any) obj {
	out := without(m)
	out[key] = v
	return out
}
