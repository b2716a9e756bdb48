package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/hashicorp/go-retryablehttp"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

// WebhookSink POSTs a templated JSON message, e.g. to a chat webhook.
type WebhookSink struct {
	url    string
	tmpl   *template.Template
	client *retryablehttp.Client
}

// WebhookOption configures a WebhookSink.
type WebhookOption func(*WebhookSink)

// WithRetries sets the retry count and the backoff bounds.
func WithRetries(max int, waitMin, waitMax time.Duration) WebhookOption {
	return func(s *WebhookSink) {
		s.client.RetryMax = max
		s.client.RetryWaitMin = waitMin
		s.client.RetryWaitMax = waitMax
	}
}

// webhookData is the value the message template is executed against.
type webhookData struct {
	Cluster     string
	Namespace   string
	Deployment  string
	Revision    string
	CompletedAt time.Time
}

// NewWebhookSink parses tmplText with the sprig function map.
func NewWebhookSink(url, tmplText string, opts ...WebhookOption) (*WebhookSink, error) {
	tmpl, err := template.New("webhook").Funcs(sprig.TxtFuncMap()).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook template: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = retryLogger{}

	s := &WebhookSink{url: url, tmpl: tmpl, client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *WebhookSink) Name() string { return "webhook" }

// Render executes the message template for event.
func (s *WebhookSink) Render(event api.DeploymentEvent) ([]byte, error) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, webhookData{
		Cluster:     event.Cluster,
		Namespace:   event.Namespace,
		Deployment:  event.Deployment,
		Revision:    string(event.Revision),
		CompletedAt: event.CompletedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render webhook message: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *WebhookSink) Send(ctx context.Context, event api.DeploymentEvent) error {
	body, err := s.Render(event)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", s.url, body)
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return api.NewTransientError("post webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// retryLogger routes retryablehttp output to the Notify subsystem.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logging.Warn(subsystem, "webhook: %s %v", msg, keysAndValues)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logging.Warn(subsystem, "webhook: %s %v", msg, keysAndValues)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug(subsystem, "webhook: %s %v", msg, keysAndValues)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logging.Debug(subsystem, "webhook: %s %v", msg, keysAndValues)
}
