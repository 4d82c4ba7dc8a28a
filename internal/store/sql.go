package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"screening-datagen/internal/db"
	"screening-datagen/pkg"
)

// SQLSink saves records through the session repository. With a notifier
// attached, each save is announced on the postgres channel.
type SQLSink struct {
	Repo     *db.Repository
	Notifier *db.Notifier
	Log      logrus.FieldLogger
}

func NewSQLSink(repo *db.Repository, notifier *db.Notifier, log logrus.FieldLogger) *SQLSink {
	return &SQLSink{Repo: repo, Notifier: notifier, Log: log}
}

func (s *SQLSink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	name := string(s.Repo.Dialect)
	if err := s.Repo.SaveSession(ctx, rec); err != nil {
		return "", wrapError(name, "save session", err)
	}
	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, rec.RunID); err != nil {
			// The row is stored; a missed notification only delays listeners.
			s.Log.WithError(err).WithField("run_id", rec.RunID).Warn("failed to notify session save")
		}
	}
	return name + "://sessions/" + rec.RunID, nil
}

func (s *SQLSink) Close() error {
	return s.Repo.DB.Close()
}
