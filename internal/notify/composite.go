package notify

import (
	"context"
	"fmt"
	"strings"
)

// CompositeNotifier implements the Notifier interface and fans out to
// multiple notifiers (e.g. Redis for the admin UI plus the process log).
type CompositeNotifier struct {
	notifiers []Notifier
}

// NewCompositeNotifier creates a new CompositeNotifier.
// It returns the concrete type so AddNotifier can be called directly.
func NewCompositeNotifier(notifiers ...Notifier) *CompositeNotifier {
	return &CompositeNotifier{notifiers: notifiers}
}

// AddNotifier adds a notifier to the composite's list.
func (cs *CompositeNotifier) AddNotifier(n Notifier) {
	if n != nil {
		cs.notifiers = append(cs.notifiers, n)
	}
}

// Notify delivers the notification through every registered notifier.
// It collects all errors encountered and returns them as a single error.
func (cs *CompositeNotifier) Notify(ctx context.Context, n Notification) error {
	if len(cs.notifiers) == 0 {
		return fmt.Errorf("no notifiers configured in CompositeNotifier")
	}

	var allErrors []string
	for _, notifier := range cs.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			allErrors = append(allErrors, err.Error())
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("composite notify failed: [ %s ]", strings.Join(allErrors, "; "))
	}
	return nil
}
