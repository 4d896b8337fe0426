package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"grindlog/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewULID generates a new ULID string, used as a session identifier. Start
// timestamps are not identifiers: two sessions can start in the same second.
func NewULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Sessions ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = NewULID()
	}

	periods, err := json.Marshal(sess.Periods)
	if err != nil {
		return fmt.Errorf("encode periods: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, start_time, end_time, duration_seconds, profit, hands_played, notes, periods)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.OverallStartTime.UTC(), sess.OverallEndTime.UTC(), sess.OverallDuration,
		sess.OverallProfit, sess.HandsPlayed, sess.Notes, string(periods),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_time, end_time, duration_seconds, profit, hands_played, notes, periods
		FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, end_time, duration_seconds, profit, hands_played, notes, periods
		FROM sessions ORDER BY start_time ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSessions(rows)
}

func (s *SQLiteStore) ListSessionsBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, end_time, duration_seconds, profit, hands_played, notes, periods
		FROM sessions WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC, id ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list sessions between: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSessions(rows)
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *models.Session) error {
	periods, err := json.Marshal(sess.Periods)
	if err != nil {
		return fmt.Errorf("encode periods: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET start_time = ?, end_time = ?, duration_seconds = ?, profit = ?, hands_played = ?, notes = ?, periods = ?
		WHERE id = ?`,
		sess.OverallStartTime.UTC(), sess.OverallEndTime.UTC(), sess.OverallDuration,
		sess.OverallProfit, sess.HandsPlayed, sess.Notes, string(periods), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s: %w", sess.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ImportSessions(ctx context.Context, candidates []*models.Session) (int, error) {
	added := 0
	for _, sess := range candidates {
		if sess.ID == "" {
			sess.ID = NewULID()
		}
		periods, err := json.Marshal(sess.Periods)
		if err != nil {
			return added, fmt.Errorf("encode periods: %w", err)
		}

		// Existing record wins unconditionally on id collision.
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO sessions (id, start_time, end_time, duration_seconds, profit, hands_played, notes, periods)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.OverallStartTime.UTC(), sess.OverallEndTime.UTC(), sess.OverallDuration,
			sess.OverallProfit, sess.HandsPlayed, sess.Notes, string(periods),
		)
		if err != nil {
			return added, fmt.Errorf("import session %s: %w", sess.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*models.Session, error) {
	sess := &models.Session{}
	var periods string
	err := r.Scan(&sess.ID, &sess.OverallStartTime, &sess.OverallEndTime,
		&sess.OverallDuration, &sess.OverallProfit, &sess.HandsPlayed,
		&sess.Notes, &periods)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(periods), &sess.Periods); err != nil {
		return nil, fmt.Errorf("decode periods for %s: %w", sess.ID, err)
	}
	return sess, nil
}

func collectSessions(rows *sql.Rows) ([]*models.Session, error) {
	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// --- Plans ---

func (s *SQLiteStore) SetPlan(ctx context.Context, date string, p models.Plan) error {
	if p.IsZero() {
		_, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE date = ?`, date)
		if err != nil {
			return fmt.Errorf("delete plan: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plans (date, hours, hands) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET hours = excluded.hours, hands = excluded.hands`,
		date, p.Hours, p.Hands,
	)
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, date string) (models.Plan, bool, error) {
	var p models.Plan
	err := s.db.QueryRowContext(ctx,
		`SELECT hours, hands FROM plans WHERE date = ?`, date,
	).Scan(&p.Hours, &p.Hands)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, false, nil
	}
	if err != nil {
		return models.Plan{}, false, fmt.Errorf("get plan: %w", err)
	}
	return p, true, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context) (map[string]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, hours, hands FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	plans := make(map[string]models.Plan)
	for rows.Next() {
		var date string
		var p models.Plan
		if err := rows.Scan(&date, &p.Hours, &p.Hands); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans[date] = p
	}
	return plans, rows.Err()
}

// --- Off days ---

func (s *SQLiteStore) SetOffDay(ctx context.Context, date string, off bool) error {
	var err error
	if off {
		_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO off_days (date) VALUES (?)`, date)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM off_days WHERE date = ?`, date)
	}
	if err != nil {
		return fmt.Errorf("set off day: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IsOffDay(ctx context.Context, date string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM off_days WHERE date = ?`, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check off day: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) ListOffDays(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date FROM off_days`)
	if err != nil {
		return nil, fmt.Errorf("list off days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	offDays := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan off day: %w", err)
		}
		offDays[date] = true
	}
	return offDays, rows.Err()
}

// --- Active session snapshot ---

func (s *SQLiteStore) PutActiveSession(ctx context.Context, a *models.ActiveSession) error {
	snapshot, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO active_session (id, snapshot) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot`,
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("put active session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetActiveSession(ctx context.Context) (*models.ActiveSession, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM active_session WHERE id = 1`).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	a := &models.ActiveSession{}
	if err := json.Unmarshal([]byte(snapshot), a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if a.OverallStartTime.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrCorruptSnapshot)
	}
	return a, nil
}

func (s *SQLiteStore) ClearActiveSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// --- Planning replace / reset ---

func (s *SQLiteStore) ReplacePlanning(ctx context.Context, plans map[string]models.Plan, offDays map[string]bool) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plans`); err != nil {
		return fmt.Errorf("clear plans: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM off_days`); err != nil {
		return fmt.Errorf("clear off days: %w", err)
	}
	for date, p := range plans {
		if err := s.SetPlan(ctx, date, p); err != nil {
			return err
		}
	}
	for date, off := range offDays {
		if err := s.SetOffDay(ctx, date, off); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ResetAll(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM sessions`,
		`DELETE FROM plans`,
		`DELETE FROM off_days`,
		`DELETE FROM active_session`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}
