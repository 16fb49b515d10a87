package leverade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"
	"waterpolo-tracker/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://api.leverade.com"
const DefaultRequestDelay = 300 * time.Millisecond

type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("leverade: %s returned status %d", e.Endpoint, e.Code)
}

type ClientOptions struct {
	BaseUrl string
	// minimum spacing between requests, rate limiting is purely
	// courteous: the API is public and unauthenticated
	RequestDelay time.Duration
}

type Client struct {
	http  *resty.Client
	delay time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "wptracker.lib.leverade.http")

	return &Client{http: client, delay: opts.RequestDelay}
}

func (c *Client) throttle(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	slot := c.last.Add(c.delay)
	if slot.Before(now) {
		slot = now
	}
	c.last = slot
	wait := slot.Sub(now)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (Document, error) {
	err := c.throttle(ctx)
	if err != nil {
		return Document{}, err
	}

	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	res, err := req.Get("/" + endpoint)
	if err != nil {
		return Document{}, err
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return Document{}, &StatusError{Code: res.StatusCode(), Endpoint: endpoint}
	}

	var doc Document
	err = json.Unmarshal(res.Body(), &doc)
	if err != nil {
		return Document{}, fmt.Errorf("leverade: decode %s: %w", endpoint, err)
	}
	return doc, nil
}
