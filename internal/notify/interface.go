package notify

import "context"

// Notifier delivers a regression alert to one destination.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
