package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

// WebhookSender is the delivery-side sink contract. Tests substitute a mock
// to observe pages without a live endpoint.
type WebhookSender interface {
	Send(ctx context.Context, url string, msg Message) error
}

// WebhookClient posts messages to webhook endpoints. Rate limiting is
// recovered by honoring the sink's retry delay and resubmitting the same
// page; no page is ever dropped on a 429. Any other non-success status is
// fatal for the page.
type WebhookClient struct {
	client *http.Client
	// sleep is injected so tests can observe retry delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewWebhookClient(timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &WebhookClient{
		client: &http.Client{Timeout: timeout, Transport: tr},
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type rateLimitBody struct {
	RetryAfter float64 `json:"retry_after"`
}

// Send submits one message. On 429 it parses the fractional retry_after
// seconds from the response body (falling back to one second), sleeps, and
// retries the same message until the sink accepts it or ctx is cancelled.
func (c *WebhookClient) Send(ctx context.Context, url string, msg Message) error {
	if url == "" {
		return fmt.Errorf("webhook: empty url")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("webhook: marshal message: %w", err)
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: post: %w", err)
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if resp.StatusCode/100 == 2 {
			return nil
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			var rl rateLimitBody
			_ = json.Unmarshal(respBody, &rl)
			wait := time.Duration(rl.RetryAfter * float64(time.Second))
			if wait <= 0 {
				wait = time.Second
			}
			log.Printf("webhook: rate limited, retrying in %s", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, string(respBody))
	}
}
