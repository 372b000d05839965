package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FileStore keeps each token as a JSON document at the path named by its key.
type FileStore struct{}

// NewFileStore returns a FileStore.
func NewFileStore() *FileStore { return &FileStore{} }

// Get reads the token stored at path.
func (FileStore) Get(ctx context.Context, path string) (*oauth2.Token, error) {
	_ = ctx
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path chosen by the operator
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Op: "get", Key: path, Kind: KindAbsent, Err: err}
		}
		return nil, &Error{Op: "get", Key: path, Kind: KindIO, Err: err}
	}
	tok := &oauth2.Token{}
	if decodeErr := json.Unmarshal(data, tok); decodeErr != nil {
		return nil, &Error{Op: "get", Key: path, Kind: KindCorrupt, Err: decodeErr}
	}
	if !validToken(tok) {
		return nil, &Error{Op: "get", Key: path, Kind: KindCorrupt, Err: errors.New("missing access token")}
	}
	return tok, nil
}

// Store writes tok to path atomically with owner-only permissions.
func (FileStore) Store(ctx context.Context, path string, tok *oauth2.Token) error {
	_ = ctx
	if tok == nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: errors.New("nil token")}
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o700); err != nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: fmt.Errorf("create token dir: %w", err)}
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: fmt.Errorf("encode token: %w", err)}
	}
	tmp, err := os.CreateTemp(filepath.Dir(clean), ".token-*")
	if err != nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: err}
	}
	if err := os.Rename(tmpName, clean); err != nil {
		return &Error{Op: "store", Key: path, Kind: KindIO, Err: err}
	}
	return nil
}

var _ Store = FileStore{}
