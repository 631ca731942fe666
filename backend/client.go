package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	registerPath    = "/api/v1/users/auth/register/"
	tiersPath       = "/api/v1/subscriptions/tiers/"
	publicTiersPath = "/api/v1/subscriptions/tiers/public/"
	checkoutPath    = "/api/v1/subscriptions/create_checkout_session/"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Credentials are injected instead of being read from ambient storage.
type Credentials struct {
	AccessToken string
}

type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

func NewClient(cfg Config, creds Credentials) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, &Error{Kind: KindConfiguration, Op: "new client", Message: "backend base url is empty"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: base, creds: creds, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, "register", http.MethodPost, registerPath, req, &out)
	return out, err
}

// ListTiers reads the authenticated listing and falls back to the public one when
// the backend refuses the credentials.
func (c *Client) ListTiers(ctx context.Context) ([]SubscriptionTier, error) {
	var out []SubscriptionTier
	err := c.do(ctx, "list tiers", http.MethodGet, tiersPath, nil, &out)
	var be *Error
	if errors.As(err, &be) && be.Kind == KindStatus && (be.Status == http.StatusUnauthorized || be.Status == http.StatusForbidden) {
		out = nil
		err = c.do(ctx, "list public tiers", http.MethodGet, publicTiersPath, nil, &out)
	}
	return out, err
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	var out CheckoutSession
	if err := c.do(ctx, "create checkout session", http.MethodPost, checkoutPath, req, &out); err != nil {
		return out, err
	}
	if out.CheckoutURL == "" && out.SessionID == "" {
		return out, &Error{Kind: KindDecode, Op: "create checkout session", Message: "response has neither checkout_url nor session_id"}
	}
	return out, nil
}

// TierID maps a tier keyword to the backend identifier, matching on the tier field
// first and the display name second.
func TierID(tiers []SubscriptionTier, tier string) (json.RawMessage, error) {
	for _, t := range tiers {
		if strings.EqualFold(t.Tier, tier) {
			return t.ID, nil
		}
	}
	for _, t := range tiers {
		if strings.EqualFold(t.Name, tier) {
			return t.ID, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Op: "lookup tier", Message: fmt.Sprintf("no tier %q in listing", tier)}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindConfiguration, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// errorMessage pulls a human message out of the common error payload shapes.
func errorMessage(raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		s := strings.TrimSpace(string(raw))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	for _, k := range []string{"error", "detail", "message"} {
		if v, ok := payload[k].(string); ok && v != "" {
			return v
		}
	}
	// field errors: {"email": ["already exists"]}
	for k, v := range payload {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return k + ": " + s
			}
		}
	}
	return ""
}
