package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ormasoftchile/actionspec/pkg/config"
	"github.com/ormasoftchile/actionspec/pkg/format"
	"github.com/ormasoftchile/actionspec/pkg/logging"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// DefaultBackoff is the delay before the first retry. It doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

// Pinata publishes documents with the Pinata pinJSONToIPFS endpoint.
type Pinata struct {
	Endpoint    string
	APIKey      string
	APISecret   string
	Timeout     time.Duration // per attempt
	MaxAttempts int
	Backoff     time.Duration

	Client    *http.Client
	Logger    *slog.Logger
	Validator *validate.Validator
}

// NewPinata builds a publisher from configuration.
func NewPinata(cfg config.Publish, log *slog.Logger) *Pinata {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pinata{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		APISecret:   cfg.APISecret,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     DefaultBackoff,
		Client:      http.DefaultClient,
		Logger:      log,
	}
}

type pinRequest struct {
	Content  json.RawMessage `json:"pinataContent"`
	Metadata *pinMetadata    `json:"pinataMetadata,omitempty"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// encodeRequest marshals req without HTML escaping so the pinned content
// keeps the exact bytes Canonical produced.
func encodeRequest(req pinRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("pinata returned %d: %s", e.code, e.body)
}

// Publish validates doc, pins its canonical encoding and returns the CID.
// Transport failures, 429 and 5xx responses are retried with exponential
// backoff up to MaxAttempts; each attempt is bounded by Timeout.
func (p *Pinata) Publish(ctx context.Context, doc any) (string, error) {
	if err := checkDocument(p.Validator, doc); err != nil {
		return "", err
	}
	if p.APIKey == "" || p.APISecret == "" {
		return "", ErrMissingCredentials
	}
	content, err := Canonical(doc)
	if err != nil {
		return "", err
	}
	req := pinRequest{Content: content}
	if m, ok := doc.(map[string]any); ok {
		if title, ok := m["title"].(string); ok && title != "" {
			req.Metadata = &pinMetadata{Name: title}
		}
	}
	body, err := encodeRequest(req)
	if err != nil {
		return "", fmt.Errorf("marshal pin request: %w", err)
	}

	attempts := max(p.MaxAttempts, 1)
	delay := p.Backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		cid, err := p.attempt(ctx, body)
		if err == nil {
			p.logger().Info("pinned action", "cid", cid, "attempt", attempt)
			return cid, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			return "", err
		}
		if attempt == attempts {
			break
		}
		p.logger().Warn("pin attempt failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", fmt.Errorf("publish: giving up after %d attempts: %w", attempts, lastErr)
}

func (p *Pinata) attempt(ctx context.Context, body []byte) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pinata_api_key", p.APIKey)
	req.Header.Set("pinata_secret_api_key", p.APISecret)

	resp, err := p.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(data))}
	}

	var out pinResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", permanent(fmt.Errorf("decode response: %w", err))
	}
	if !format.CID(out.IpfsHash) {
		return "", permanent(fmt.Errorf("pinata returned malformed cid %q", out.IpfsHash))
	}
	return out.IpfsHash, nil
}

type permanentError struct{ error }

func (e permanentError) Unwrap() error { return e.error }

func permanent(err error) error { return permanentError{err} }

func retryable(err error) bool {
	var pe permanentError
	if errors.As(err, &pe) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

func (p *Pinata) endpoint() string {
	if p.Endpoint == "" {
		return config.DefaultPinataEndpoint
	}
	return p.Endpoint
}

func (p *Pinata) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

func (p *Pinata) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return p.Logger
}
