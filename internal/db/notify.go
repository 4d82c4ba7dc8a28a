package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Notifier wraps the LISTEN/NOTIFY mechanism in PostgreSQL. Saves announce
// the run id on Channel and the records server streams those ids to
// clients.
type Notifier struct {
	DB      *sql.DB
	DSN     string
	Channel string
	Log     logrus.FieldLogger
}

// NewNotifier constructs a new Notifier. dsn is only needed by Listen,
// which holds its own connection.
func NewNotifier(db *sql.DB, dsn, channel string, log logrus.FieldLogger) *Notifier {
	return &Notifier{DB: db, DSN: dsn, Channel: channel, Log: log}
}

// Notify announces runID on the channel.
func (n *Notifier) Notify(ctx context.Context, runID string) error {
	if _, err := n.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, runID); err != nil {
		return fmt.Errorf("notify %s: %w", n.Channel, err)
	}
	return nil
}

// Listen subscribes to the channel and yields run ids until ctx is done.
// The returned channel is closed when the listener stops.
func (n *Notifier) Listen(ctx context.Context) (<-chan string, error) {
	listener := pq.NewListener(n.DSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			n.Log.WithError(err).WithField("event", ev).Warn("notify listener event")
		}
	})
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", n.Channel, err)
	}

	ch := make(chan string)
	go func() {
		defer func() {
			_ = listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case note := <-listener.Notify:
				// nil after a reconnect
				if note == nil {
					continue
				}
				select {
				case ch <- note.Extra:
				case <-ctx.Done():
					return
				}
			case <-time.After(90 * time.Second):
				if err := listener.Ping(); err != nil {
					n.Log.WithError(err).Warn("notify listener ping failed")
				}
			}
		}
	}()
	return ch, nil
}
