package pushgateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-sitting-marketplace/internal/platform/httpclient"
	"pet-sitting-marketplace/internal/ports/notify"
)

var (
	ErrNotConfigured = errors.New("push gateway client not configured")
	ErrUnauthorized  = errors.New("push gateway unauthorized")
	ErrUpstream      = errors.New("push gateway upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

// Pusher implementa notify.Pusher contra un gateway HTTP de push notifications.
// El gateway resuelve los device tokens del usuario; acá solo mandamos user_id + payload.
type Pusher struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func New(cfg Config) (*Pusher, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Pusher{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (p *Pusher) IsConfigured() bool {
	return p != nil && p.http != nil && p.http.BaseURL != "" && p.apiKey != ""
}

func (p *Pusher) Push(ctx context.Context, msg notify.Push) error {
	if !p.IsConfigured() {
		return ErrNotConfigured
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return errors.New("push requires user id")
	}

	reqBody := struct {
		UserID string            `json:"user_id"`
		Title  string            `json:"title"`
		Body   string            `json:"body"`
		Data   map[string]string `json:"data,omitempty"`
	}{
		UserID: msg.UserID,
		Title:  msg.Title,
		Body:   msg.Body,
		Data:   msg.Data,
	}

	headers := map[string]string{
		p.apiKeyHeader: p.apiKey,
	}

	err := p.http.DoJSON(ctx, http.MethodPost, "/v1/push", headers, reqBody, nil)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			if he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden {
				return ErrUnauthorized
			}
			return fmt.Errorf("%w: status=%d", ErrUpstream, he.StatusCode)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return nil
}
