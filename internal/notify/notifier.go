package notify

import (
	"context"
	"log"
)

// Severity classifies a notification for the admin UI toast surface.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a fire-and-forget user-facing message. There is no
// acknowledgment contract; Notify errors are logged by callers at most.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier delivers notifications to whatever surface is wired in.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the process log. Used in development
// and as a fallback when no Redis surface is configured.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() Notifier {
	return &LogNotifier{}
}

// Notify logs the notification.
func (s *LogNotifier) Notify(ctx context.Context, n Notification) error {
	log.Printf("[notify:%s] %s - %s", n.Severity, n.Title, n.Description)
	return nil
}
