package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ProviderClient wraps the payment provider's session API and its
// webhook signature scheme. The signature header format is
// "t=<unix>,v1=<hex hmac-sha256(secret, t + "." + body)>".
type ProviderClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	tolerance     time.Duration
	httpc         *http.Client
	loggerf       func(format string, args ...interface{})
}

func NewProviderClient(baseURL, apiKey, webhookSecret string, timeout, tolerance time.Duration, loggerf func(format string, args ...interface{})) *ProviderClient {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &ProviderClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		tolerance:     tolerance,
		httpc:         &http.Client{Timeout: timeout},
		loggerf:       loggerf,
	}
}

func (c *ProviderClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("%w: provider credentials are not configured", ErrProvider)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		c.loggerf("level=error msg=create session rejected status=%d body=%s", resp.StatusCode, raw)
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding session: %v", ErrProvider, err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: session id missing in response", ErrProvider)
	}
	return &s, nil
}

// VerifyAndParseEvent checks the webhook signature against the raw body
// and parses the event. Reconciliation trusts the result and never
// re-checks signatures.
func (c *ProviderClient) VerifyAndParseEvent(rawBody []byte, sigHeader string, now time.Time) (*Event, error) {
	ts, v1, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}
	if c.tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > c.tolerance || age < -c.tolerance {
			return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
		}
	}

	expected := computeSignature(c.webhookSecret, ts, rawBody)
	got, err := hex.DecodeString(v1)
	if err != nil || !hmac.Equal(got, expected) {
		return nil, ErrInvalidSignature
	}

	var ev Event
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	return &ev, nil
}

func parseSignatureHeader(header string) (ts int64, v1 string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
		case "v1":
			v1 = v
		}
	}
	if ts == 0 || v1 == "" {
		return 0, "", fmt.Errorf("%w: missing signature fields", ErrInvalidSignature)
	}
	return ts, v1, nil
}

func computeSignature(secret string, ts int64, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

// SignPayload builds a valid signature header for a raw body.
func SignPayload(secret string, ts time.Time, body []byte) string {
	sig := computeSignature(secret, ts.Unix(), body)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}
