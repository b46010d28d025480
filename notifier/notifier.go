/*
notifier.go - Delivery channels for the daily digest

PURPOSE:
  Small abstraction over "send this text to the owner". The scheduler
  formats the digest; a Notifier only delivers it. Keeping the interface
  to one method means tests can capture output with a five-line fake.

IMPLEMENTATIONS:
  - LogNotifier:      writes to the process log (default)
  - TelegramNotifier: telegram.go, pushes to a chat via the Bot API

SEE ALSO:
  - api/scheduler.go: The only production caller
*/
package notifier

import (
	"context"
	"log"
)

// Notifier delivers one plain-text message to the configured channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// LogNotifier writes digests to the process log. It is the default channel
// so a server without Telegram credentials still surfaces the digest.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, text string) error {
	log.Printf("[Notify]\n%s", text)
	return nil
}
