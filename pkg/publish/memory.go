package publish

import (
	"context"
	"crypto/sha256"
	"math/big"
	"sync"

	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// Memory is an in-process Publisher. Its identifiers are CIDv0-shaped
// sha2-256 multihashes of the canonical document, so equal documents get
// equal identifiers. Used for dry runs and tests.
type Memory struct {
	Validator *validate.Validator

	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: map[string][]byte{}}
}

// Publish validates and stores doc.
func (m *Memory) Publish(ctx context.Context, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkDocument(m.Validator, doc); err != nil {
		return "", err
	}
	data, err := Canonical(doc)
	if err != nil {
		return "", err
	}
	cid := ContentID(data)

	m.mu.Lock()
	if m.docs == nil {
		m.docs = map[string][]byte{}
	}
	m.docs[cid] = data
	m.mu.Unlock()
	return cid, nil
}

// Get returns the canonical bytes stored under cid.
func (m *Memory) Get(cid string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[cid]
	return data, ok
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ContentID returns the base58 sha2-256 multihash of data.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	mh := append([]byte{0x12, 0x20}, sum[:]...)
	return encodeBase58(mh)
}

func encodeBase58(data []byte) string {
	n := new(big.Int).SetBytes(data)
	radix := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for _, b := range data {
		if b != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
