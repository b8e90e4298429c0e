package mail

import (
	"context"
	"log/slog"
)

// LogTransport writes messages to the log instead of sending them. Links are
// only logged at debug level since they carry live reset tokens.
type LogTransport struct {
	Logger *slog.Logger
}

func (t LogTransport) Deliver(ctx context.Context, m Message) error {
	t.Logger.InfoContext(ctx, "email",
		"type", m.Kind,
		"to", m.To,
		"subject", m.Subject,
	)
	if m.Link != "" {
		t.Logger.DebugContext(ctx, "email link", "type", m.Kind, "to", m.To, "link", m.Link)
	}
	return nil
}
