// Package remote wraps the backend's two operations, list-all and
// append-one, behind a narrow gateway. It owns request construction,
// response decoding and the tolerant normalization of backend records.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/floodworks/sesloc/internal/record"
)

const defaultTimeout = 30 * time.Second

// Client talks to the location backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a Client. An empty token produces a read-only client whose
// Append always fails with ErrNoToken. A zero timeout uses the default.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// CanWrite reports whether this client holds a write-capability token.
func (c *Client) CanWrite() bool {
	return c.token != ""
}

// listBody is the tolerated shape of a list response. Items is decoded
// leniently: a missing or mistyped field yields an empty list, not an error.
type listBody struct {
	Items json.RawMessage `json:"items"`
}

// ListAll performs a full read of the backend and returns every record,
// normalized. Records the backend returns malformed are still included with
// NaN/empty fields; filtering is the caller's concern.
func (c *Client) ListAll(ctx context.Context) ([]record.Record, error) {
	if c.baseURL == "" {
		return nil, ErrNoBackend
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "GET", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "GET", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "GET", Code: resp.StatusCode}
	}

	var body listBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &DecodeError{Op: "GET", Err: err}
	}

	// Anything other than an array under "items" is treated as no items.
	var items []map[string]any
	if err := json.Unmarshal(body.Items, &items); err != nil {
		items = nil
	}

	records := make([]record.Record, 0, len(items))
	for _, item := range items {
		records = append(records, Normalize(item))
	}
	return records, nil
}

// appendBody is the tolerated shape of an append response.
type appendBody struct {
	Item  map[string]any `json:"item"`
	OK    *bool          `json:"ok"`
	Error string         `json:"error"`
}

// Append writes one record. The payload always carries the record's original
// clientId so retries stay idempotent. A 2xx status with an application
// rejection marker in the body is a failure (RejectedError); a 2xx status
// with an undecodable body is ErrAmbiguous because the write may already be
// durable server-side.
func (c *Client) Append(ctx context.Context, rec record.Record) (record.Record, error) {
	if c.baseURL == "" {
		return record.Record{}, ErrNoBackend
	}
	if c.token == "" {
		return record.Record{}, ErrNoToken
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return record.Record{}, &TransportError{Op: "POST", Err: err}
	}

	postURL := c.baseURL + "?token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(payload))
	if err != nil {
		return record.Record{}, &TransportError{Op: "POST", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return record.Record{}, &TransportError{Op: "POST", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return record.Record{}, &StatusError{Op: "POST", Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return record.Record{}, ErrAmbiguous
	}

	var body appendBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return record.Record{}, ErrAmbiguous
	}

	if body.OK != nil && !*body.OK {
		return record.Record{}, &RejectedError{Reason: body.Error}
	}
	if body.Error != "" {
		return record.Record{}, &RejectedError{Reason: body.Error}
	}

	if body.Item != nil {
		return Normalize(body.Item), nil
	}
	// Backend acknowledged without echoing the item.
	return rec, nil
}
