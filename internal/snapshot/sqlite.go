package snapshot

import (
	"database/sql"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"PaperTrader/internal/model"
)

// SQLiteStore keeps the history in a SQLite database. The schema columns
// live in snapshot_schema, each snapshot in snapshots, and its cells in
// snapshot_prices as exact decimal text (NULL for unknown).
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.Mutex
	policy    Policy
	sessionID string
	schema    []string
}

// OpenSQLiteStore opens (or creates) the database and runs migrations.
func OpenSQLiteStore(dbPath string, policy Policy) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, policy: policy, sessionID: uuid.NewString()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if s.schema, err = s.loadSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[INFO] sqlite snapshot store opened: %s (session %s)", dbPath, s.sessionID)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_schema (
			position   INTEGER PRIMARY KEY,
			instrument TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			taken_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_prices (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
			position    INTEGER NOT NULL REFERENCES snapshot_schema(position),
			price       TEXT,
			PRIMARY KEY (snapshot_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(taken_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadSchema() ([]string, error) {
	rows, err := s.db.Query(`SELECT instrument FROM snapshot_schema ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SessionID identifies the rows written through this handle.
func (s *SQLiteStore) SessionID() string { return s.sessionID }

func (s *SQLiteStore) Append(row model.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := reconcile(s.schema, row, s.policy)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if s.schema == nil {
		for i, c := range out {
			if _, err := tx.Exec(`INSERT INTO snapshot_schema (position, instrument) VALUES (?, ?)`, i, c.Name); err != nil {
				return fmt.Errorf("insert schema column %q: %w", c.Name, err)
			}
		}
	}

	res, err := tx.Exec(`INSERT INTO snapshots (session_id, taken_at) VALUES (?, ?)`, s.sessionID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for i, c := range out {
		var price sql.NullString
		if c.Price.Valid {
			price = sql.NullString{String: c.Price.Decimal.String(), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO snapshot_prices (snapshot_id, position, price) VALUES (?, ?, ?)`, id, i, price); err != nil {
			return fmt.Errorf("insert price %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if s.schema == nil {
		s.schema = out.Names()
	}
	return nil
}

func (s *SQLiteStore) LoadLatest() (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(id) FROM snapshots`).Scan(&last); err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if !last.Valid {
		return nil, ErrNotFound
	}

	rows, err := s.queryRows(`WHERE p.snapshot_id = ?`, last.Int64)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	return rows[0].Known(), nil
}

func (s *SQLiteStore) History() ([]model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryRows("")
}

// queryRows reads snapshot cells, optionally filtered, grouped into rows in
// id order.
func (s *SQLiteStore) queryRows(where string, args ...any) ([]model.Row, error) {
	rows, err := s.db.Query(`SELECT p.snapshot_id, c.instrument, p.price
		FROM snapshot_prices p
		JOIN snapshot_schema c ON c.position = p.position
		`+where+`
		ORDER BY p.snapshot_id, p.position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var (
		out    []model.Row
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id    int64
			name  string
			price sql.NullString
		)
		if err := rows.Scan(&id, &name, &price); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		cell := model.Cell{Name: name}
		if price.Valid {
			p, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("snapshot %d column %q: invalid price %q", id, name, price.String)
			}
			cell.Price = decimal.NewNullDecimal(p)
		}
		if id != lastID {
			out = append(out, model.Row{})
			lastID = id
		}
		out[len(out)-1] = append(out[len(out)-1], cell)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Schema() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.schema)
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite snapshot store")
	return s.db.Close()
}
