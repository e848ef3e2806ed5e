package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
)

// Document names for the persisted ledgers.
const (
	DocProfile  = "profile"
	DocAgenda   = "agenda"
	DocProjects = "projects"
)

// LoadDocument unmarshals the named document into out. A missing document
// returns core.ErrDocumentNotFound with out untouched. A corrupt document is
// treated as absent: the store starts from defaults and a warning is logged,
// processing continues.
func (db *DB) LoadDocument(name string, out interface{}) error {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return core.ErrDocumentNotFound
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(body), out); err != nil {
		logging.WithField("document", name).Warn("corrupt document, starting from defaults: %v", err)
		return core.ErrDocumentNotFound
	}
	return nil
}

// SaveDocument persists v as the entire state of the named document.
// Last writer wins; the write is durable before the call returns.
func (db *DB) SaveDocument(name string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, name, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}
