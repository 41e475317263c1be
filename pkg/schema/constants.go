package schema

// Chains maps well-known network names to EVM chain ids.
var Chains = map[string]int64{
	"ETHEREUM_MAINNET":  1,
	"ETHEREUM_GOERLI":   5,
	"OP_MAINNET":        10,
	"CRONOS_MAINNET":    25,
	"ROOTSTOCK_MAINNET": 30,
	"TELOS":             40,
	"BNB_SMARTCHAIN":    56,
	"GNOSIS":            100,
	"POLYGON_MAINNET":   137,
	"MANTLE":            5000,
	"BASE":              8453,
	"ARBITRUM_ONE":      42161,
	"AVALANCHE":         43114,
	"LINEA":             59144,
	"BLAST":             81457,
}

// KnownChain reports whether id belongs to a network in Chains.
func KnownChain(id int64) bool {
	for _, c := range Chains {
		if c == id {
			return true
		}
	}
	return false
}

// Global inputs clients resolve without asking the user.
const (
	GlobalWalletAddress = "WALLET_ADDRESS"
	GlobalUnixTimestamp = "UNIX_TIMESTAMP"
)

// ERC20 function signatures.
var ERC20 = map[string]string{
	"NAME":          "name()",
	"SYMBOL":        "symbol()",
	"DECIMALS":      "decimals()",
	"APPROVE":       "approve(address,uint256)",
	"TRANSFER":      "transfer(address,uint256)",
	"TRANSFER_FROM": "transferFrom(address,address,uint256)",
	"ALLOWANCE":     "allowance(address,address)",
	"BALANCE_OF":    "balanceOf(address)",
}

// ERC721 function signatures.
var ERC721 = map[string]string{
	"OWNER_OF":                "ownerOf(uint256)",
	"BALANCE_OF":              "balanceOf(address)",
	"APPROVE":                 "approve(address,uint256)",
	"GET_APPROVED":            "getApproved(uint256)",
	"SET_APPROVAL_FOR_ALL":    "setApprovalForAll(address,bool)",
	"IS_APPROVED_FOR_ALL":     "isApprovedForAll(address,address)",
	"TRANSFER_FROM":           "transferFrom(address,address,uint256)",
	"SAFE_TRANSFER_FROM":      "safeTransferFrom(address,address,uint256)",
	"SAFE_TRANSFER_FROM_DATA": "safeTransferFrom(address,address,uint256,bytes)",
}
