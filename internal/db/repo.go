package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"screening-datagen/pkg"
)

// Dialect names the SQL flavour behind a Repository.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ErrNotFound is returned when no session matches a run id.
var ErrNotFound = errors.New("session not found")

// sqliteTime keeps stored timestamps sortable as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// Repository stores session records. Queries are written with $n
// placeholders and rebound for sqlite.
type Repository struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{DB: db, Dialect: dialect}
}

// Open connects to dsn with the driver for dialect and verifies the
// connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	var driver string
	switch dialect {
	case Postgres:
		driver = "postgres"
	case SQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// One writer at a time.
		db.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, nil
}

// SaveSession inserts or replaces a record together with its transcript
// lines.
func (r *Repository) SaveSession(ctx context.Context, rec *pkg.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.rebind(
		`INSERT INTO sessions (run_id, agent_id, template_id, persona_id, seed, doctor_turns, record, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         ON CONFLICT (run_id) DO UPDATE SET
             agent_id = excluded.agent_id,
             template_id = excluded.template_id,
             persona_id = excluded.persona_id,
             seed = excluded.seed,
             doctor_turns = excluded.doctor_turns,
             record = excluded.record,
             created_at = excluded.created_at`),
		rec.RunID, rec.AgentID, rec.Profile.TemplateID, rec.Persona.ID, rec.Seed,
		rec.DoctorTurns, string(data), r.timeArg(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM messages WHERE run_id = $1`), rec.RunID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	insert := r.rebind(`INSERT INTO messages (run_id, idx, role, content) VALUES ($1, $2, $3, $4)`)
	for i, m := range rec.Transcript {
		if _, err := tx.ExecContext(ctx, insert, rec.RunID, i, string(m.Role), m.Content); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetSession returns the stored record for runID.
func (r *Repository) GetSession(ctx context.Context, runID string) (*pkg.SessionRecord, error) {
	var data string
	err := r.DB.QueryRowContext(ctx,
		r.rebind(`SELECT record FROM sessions WHERE run_id = $1`), runID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	var rec pkg.SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", runID, err)
	}
	return &rec, nil
}

// ListSessions returns previews of the most recent sessions, newest first.
func (r *Repository) ListSessions(ctx context.Context, limit int) ([]pkg.SessionPreview, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, r.rebind(
		`SELECT run_id, agent_id, template_id, persona_id, doctor_turns, created_at
         FROM sessions
         ORDER BY created_at DESC
         LIMIT $1`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []pkg.SessionPreview{}
	for rows.Next() {
		var p pkg.SessionPreview
		var created any
		if err := rows.Scan(&p.RunID, &p.AgentID, &p.TemplateID, &p.PersonaID, &p.Turns, &created); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = scanTime(created); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTranscript returns the transcript lines of runID in order.
func (r *Repository) GetTranscript(ctx context.Context, runID string) ([]pkg.Message, error) {
	rows, err := r.DB.QueryContext(ctx, r.rebind(
		`SELECT role, content FROM messages WHERE run_id = $1 ORDER BY idx ASC`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transcript []pkg.Message
	for rows.Next() {
		var m pkg.Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		transcript = append(transcript, m)
	}
	return transcript, rows.Err()
}

// CountSessions counts stored sessions, optionally for a single template.
func (r *Repository) CountSessions(ctx context.Context, templateID string) (int, error) {
	var count int
	var err error
	if templateID == "" {
		err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	} else {
		err = r.DB.QueryRowContext(ctx,
			r.rebind(`SELECT COUNT(*) FROM sessions WHERE template_id = $1`), templateID,
		).Scan(&count)
	}
	return count, err
}

func (r *Repository) timeArg(t time.Time) any {
	if r.Dialect == SQLite {
		return t.UTC().Format(sqliteTime)
	}
	return t
}

// rebind rewrites $n placeholders to ? for sqlite.
func (r *Repository) rebind(query string) string {
	if r.Dialect != SQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			b.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		b.WriteByte('?')
		i = j - 1
	}
	return b.String()
}

func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(sqliteTime, t)
	case []byte:
		return time.Parse(sqliteTime, string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
}
