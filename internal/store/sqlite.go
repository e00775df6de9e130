package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourorg/scaffold/pkg/types"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			page_name TEXT NOT NULL,
			entity_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			field_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS fragments (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY(session_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_session ON fragments(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateSession(source, pageName, entityName, kind string, fieldCount int) (*types.Session, error) {
	now := time.Now().UTC()
	id, err := s.nextSessionID(now)
	if err != nil {
		return nil, err
	}
	sess := &types.Session{
		ID:         id,
		Source:     source,
		PageName:   pageName,
		EntityName: entityName,
		Kind:       kind,
		FieldCount: fieldCount,
		Status:     "generated",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = s.db.Exec(`INSERT INTO sessions(id,source,page_name,entity_name,kind,field_count,status,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		sess.ID, sess.Source, sess.PageName, sess.EntityName, sess.Kind, sess.FieldCount, sess.Status, sess.CreatedAt, sess.UpdatedAt)
	return sess, err
}

func (s *SQLiteStore) nextSessionID(now time.Time) (string, error) {
	prefix := fmt.Sprintf("gen_%s_", now.Format("20060102"))
	rows, err := s.db.Query(`SELECT id FROM sessions WHERE id LIKE ?`, prefix+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()
	maxN := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		var n int
		_, _ = fmt.Sscanf(id, prefix+"%03d", &n)
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxN+1), nil
}

func (s *SQLiteStore) GetSession(id string) (*types.Session, error) {
	row := s.db.QueryRow(`SELECT id,source,page_name,entity_name,kind,field_count,status,created_at,updated_at FROM sessions WHERE id=?`, id)
	var out types.Session
	if err := row.Scan(&out.ID, &out.Source, &out.PageName, &out.EntityName, &out.Kind, &out.FieldCount, &out.Status, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) UpdateSessionStatus(id, status string) error {
	_, err := s.db.Exec(`UPDATE sessions SET status=?, updated_at=? WHERE id=?`, status, time.Now().UTC(), id)
	return err
}

func (s *SQLiteStore) ListSessions() ([]types.Session, error) {
	rows, err := s.db.Query(`SELECT id,source,page_name,entity_name,kind,field_count,status,created_at,updated_at FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Session
	for rows.Next() {
		var s1 types.Session
		if err := rows.Scan(&s1.ID, &s1.Source, &s1.PageName, &s1.EntityName, &s1.Kind, &s1.FieldCount, &s1.Status, &s1.CreatedAt, &s1.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s1)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM fragments WHERE session_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveFragments(sessionID string, fragments []types.Fragment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO fragments(session_id,name,content) VALUES(?,?,?)
	ON CONFLICT(session_id,name) DO UPDATE SET content=excluded.content`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, f := range fragments {
		if _, err := stmt.Exec(sessionID, f.Name, f.Content); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`UPDATE sessions SET updated_at=? WHERE id=?`, time.Now().UTC(), sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetFragments(sessionID string) ([]types.Fragment, error) {
	rows, err := s.db.Query(`SELECT session_id,name,content FROM fragments WHERE session_id=? ORDER BY name ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.Fragment, 0)
	for rows.Next() {
		var f types.Fragment
		if err := rows.Scan(&f.SessionID, &f.Name, &f.Content); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return errors.New("store is nil")
	}
	return s.db.Close()
}
