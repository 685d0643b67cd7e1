package payment

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

var _ Gateway = (*Client)(nil)

// Client talks to a Razorpay-compatible gateway REST API using basic auth
// with the merchant key id and secret.
type Client struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
}

// NewClient creates a gateway Client. baseURL is the API root, e.g.
// https://api.razorpay.com.
func NewClient(baseURL, keyID, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateOrder opens a gateway order for the amount in minor currency units
// and returns the gateway's order id.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("amount", func(e *jx.Encoder) { e.Int64(amount) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(currency) })
		e.Field("receipt", func(e *jx.Encoder) { e.Str(receipt) })
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(e.Bytes()))
	if err != nil {
		return "", &GatewayError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &GatewayError{Err: errors.Wrap(err, "create order")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &GatewayError{Err: errors.Wrap(err, "read response")}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{Err: errors.Errorf("unexpected status %d", resp.StatusCode)}
	}

	id, err := parseOrderID(body)
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	return id, nil
}

// parseOrderID extracts the "id" field from a gateway order response.
func parseOrderID(body []byte) (string, error) {
	var id string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		id = v
		return nil
	}); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if id == "" {
		return "", errors.New("response missing order id")
	}
	return id, nil
}
