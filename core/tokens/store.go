// Package tokens persists catalog access tokens and runs the OAuth2
// authorization-code and refresh flows.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/fsnotify/fsnotify"
)

// ErrNoTokens is returned by Load when nothing has been stored yet.
var ErrNoTokens = errors.New("no stored tokens")

// Store keeps the current token set between runs.
type Store interface {
	Load(ctx context.Context) (*model.TokenSet, error)
	Save(ctx context.Context, tokens *model.TokenSet) error
	Clear(ctx context.Context) error
}

// FileStore keeps tokens in a JSON file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*model.TokenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoTokens
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var ts model.TokenSet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	if ts.AccessToken == "" && ts.RefreshToken == "" {
		return nil, ErrNoTokens
	}
	return &ts, nil
}

// Save writes to a temp file and renames it over the old one so readers
// never see a half-written file.
func (s *FileStore) Save(_ context.Context, tokens *model.TokenSet) error {
	if tokens == nil {
		return errors.New("nil token set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace token file: %w", err)
	}
	logger.Debug("[Tokens] 已保存令牌", logger.String("path", s.path))
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	logger.Info("[Tokens] 已清除令牌", logger.String("path", s.path))
	return nil
}

// Watch calls onChange whenever the token file is written, replaced or
// removed by another process (a login in a second terminal, say). A removed
// file is reported as nil. Watch blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context, onChange func(*model.TokenSet)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	// watch the directory: Save replaces the file via rename
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch token dir: %w", err)
	}

	name := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
					onChange(nil)
				}
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				ts, err := s.Load(ctx)
				if err != nil {
					if errors.Is(err, ErrNoTokens) {
						onChange(nil)
					}
					continue
				}
				onChange(ts)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("[Tokens] 监听令牌文件出错", logger.ErrorField(err))
		}
	}
}
