// Package mail delivers invite emails through an HTTP mail API.
package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// HTTPMailer posts messages to a JSON mail API such as a transactional
// email provider's send endpoint.
type HTTPMailer struct {
	client *resty.Client
	url    string
}

// NewHTTPMailer creates an HTTPMailer posting to url with a bearer apiKey.
func NewHTTPMailer(url, apiKey string) *HTTPMailer {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &HTTPMailer{client: c, url: url}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendHTMLEmail sends one HTML message.
func (m *HTTPMailer) SendHTMLEmail(ctx context.Context, to, subject, html, from string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(&sendRequest{From: from, To: to, Subject: subject, HTML: html}).
		Post(m.url)
	if err != nil {
		return fmt.Errorf("mail request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no mail API is configured.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mail").Logger()}
}

// SendHTMLEmail logs the message headers.
func (m *LogMailer) SendHTMLEmail(_ context.Context, to, subject, html, from string) error {
	m.log.Info().
		Str("to", to).
		Str("from", from).
		Str("subject", subject).
		Int("html_bytes", len(html)).
		Msg("email not sent, no mail API configured")
	return nil
}
