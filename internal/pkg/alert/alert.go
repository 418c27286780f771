package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
)

// Notifier pushes operational alerts. The webhook endpoint always answers the
// payment provider with success, so failed orders are silent unless this hook
// fires when a ledger row records an error message.
type Notifier interface {
	Notify(ctx context.Context, subject string, fields map[string]string)
}

// HookNotifier POSTs alerts to a generic JSON webhook (Slack-compatible
// apps, ops bridges). Unconfigured URL is a logged no-op.
type HookNotifier struct {
	HookURL    string
	HTTPClient *http.Client
}

func NewNotifierFromEnv() *HookNotifier {
	return &HookNotifier{
		HookURL: env.GetEnv("OPS_ALERT_HOOK", ""),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *HookNotifier) Notify(ctx context.Context, subject string, fields map[string]string) {
	if n.HookURL == "" {
		log.Printf("OPS_ALERT_HOOK not set, alert dropped: %s %v", subject, fields)
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"subject": subject,
		"fields":  fields,
	})
	if err != nil {
		log.Printf("alert payload encode failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.HookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("alert request build failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		log.Printf("alert delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("alert hook answered status %d", resp.StatusCode)
	}
}
