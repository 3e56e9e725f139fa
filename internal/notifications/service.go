package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"redactor/internal/config"
	"redactor/internal/history"
)

const userAgent = "redactor/0.1"

// Notifier posts export outcomes to ntfy.
type Notifier struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

// NewNotifier builds a notifier from cfg, or returns nil when no topic is
// configured.
func NewNotifier(cfg *config.Config) *Notifier {
	if cfg == nil {
		return nil
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

// Record sends a notification for a finished export attempt.
func (n *Notifier) Record(ctx context.Context, entry history.Entry) error {
	if n == nil {
		return nil
	}
	if entry.Status == history.StatusComplete {
		if !n.notifySuccess {
			return nil
		}
		return n.send(ctx, completedPayload(entry))
	}
	return n.send(ctx, failedPayload(entry))
}

// Test sends a low priority message to confirm the topic is reachable.
func (n *Notifier) Test(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Redactor - Test",
		message:  "Notification system test",
		tags:     []string{"redactor", "test"},
		priority: "low",
	})
}

func completedPayload(entry history.Entry) payload {
	var b strings.Builder
	fmt.Fprintf(&b, "Export ready: %s", strings.TrimSpace(entry.Filename))
	if video := strings.TrimSpace(entry.VideoName); video != "" {
		fmt.Fprintf(&b, "\nSource: %s", video)
	}
	fmt.Fprintf(&b, "\n%d redaction(s)", entry.Redactions)
	if len(entry.Effects) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(entry.Effects, ", "))
	}
	if entry.OutputBytes > 0 {
		fmt.Fprintf(&b, ", %s", humanize.Bytes(uint64(entry.OutputBytes)))
	}
	if elapsed := entry.Elapsed().Round(time.Second); elapsed > 0 {
		fmt.Fprintf(&b, " in %s", elapsed)
	}
	return payload{
		title:   "Redactor - Export Complete",
		message: b.String(),
		tags:    []string{"redactor", "export", "completed"},
	}
}

func failedPayload(entry history.Entry) payload {
	reason := strings.TrimSpace(entry.ErrorMessage)
	if reason == "" {
		reason = "unknown"
	}
	message := fmt.Sprintf("Export failed: %s", reason)
	if video := strings.TrimSpace(entry.VideoName); video != "" {
		message += "\nSource: " + video
	}
	tags := []string{"redactor", "export", "error"}
	if kind := strings.TrimSpace(entry.ErrorKind); kind != "" {
		tags = append(tags, kind)
	}
	return payload{
		title:    "Redactor - Export Failed",
		message:  message,
		tags:     tags,
		priority: "high",
	}
}

func (n *Notifier) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
