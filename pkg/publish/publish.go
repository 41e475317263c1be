// Package publish pins validated action documents to a content-addressed
// store and returns their content identifier.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/ormasoftchile/actionspec/pkg/validate"
)

var (
	// ErrInvalidDocument is returned for documents that fail validation.
	ErrInvalidDocument = errors.New("document failed validation")
	// ErrMissingCredentials is returned when no API key pair is configured.
	ErrMissingCredentials = errors.New("missing pinning credentials")
)

// Publisher stores a document and returns its content identifier.
type Publisher interface {
	Publish(ctx context.Context, doc any) (string, error)
}

// Canonical returns the RFC 8785 encoding of doc. Identical documents map
// to identical bytes regardless of key order or number spelling.
func Canonical(doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	out, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}
	return out, nil
}

// checkDocument rejects documents the validator does not accept.
func checkDocument(v *validate.Validator, doc any) error {
	if v == nil {
		v = validate.Default()
	}
	verdict := v.ValidateAction(doc)
	if verdict.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(verdict.Errors, "; "))
}
