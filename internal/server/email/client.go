package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a Postmark-style transactional email API.
type Client struct {
	endpoint   string
	sender     string
	authToken  string
	httpClient *http.Client
}

// NewClient builds a Client. timeout bounds the whole API call; exceeding it
// is a normal failure outcome, not a crash.
func NewClient(endpoint, sender, authToken string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		sender:     sender,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send posts the message to the email API. Any transport error or non-2xx
// response is returned as an error; nothing is retried.
func (c *Client) Send(ctx context.Context, msg Email) error {
	body, err := json.Marshal(sendRequest{
		From:     c.sender,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("email encode error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email send error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email send failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
