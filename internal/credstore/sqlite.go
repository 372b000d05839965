package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

const tokenSchema = `CREATE TABLE IF NOT EXISTS oauth_tokens (
	key        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps tokens in a single SQLite table keyed by name.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("credstore: opening sqlite database failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credstore: connecting to sqlite database failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, tokenSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credstore: creating token table failed: %w", err)
	}
	return &SQLiteStore{db: db, clock: time.Now}, nil
}

// Get loads the token stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*oauth2.Token, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM oauth_tokens WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Op: "get", Key: key, Kind: KindAbsent, Err: err}
	}
	if err != nil {
		return nil, &Error{Op: "get", Key: key, Kind: KindIO, Err: err}
	}
	tok := &oauth2.Token{}
	if decodeErr := json.Unmarshal([]byte(raw), tok); decodeErr != nil {
		return nil, &Error{Op: "get", Key: key, Kind: KindCorrupt, Err: decodeErr}
	}
	if !validToken(tok) {
		return nil, &Error{Op: "get", Key: key, Kind: KindCorrupt, Err: errors.New("missing access token")}
	}
	return tok, nil
}

// Store upserts tok under key.
func (s *SQLiteStore) Store(ctx context.Context, key string, tok *oauth2.Token) error {
	if tok == nil {
		return &Error{Op: "store", Key: key, Kind: KindIO, Err: errors.New("nil token")}
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return &Error{Op: "store", Key: key, Kind: KindIO, Err: fmt.Errorf("encode token: %w", err)}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO oauth_tokens (key, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		key, string(data), s.clock().Unix(),
	)
	if err != nil {
		return &Error{Op: "store", Key: key, Kind: KindIO, Err: err}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
