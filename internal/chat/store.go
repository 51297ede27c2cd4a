package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranscriptStore snapshots transcripts keyed by chat session id.
// Load returns (nil, nil) for a session that was never saved.
type TranscriptStore interface {
	Load(ctx context.Context, sessionID string) ([]Turn, error)
	Save(ctx context.Context, sessionID string, turns []Turn) error
	Delete(ctx context.Context, sessionID string) error
}

var (
	ErrInvalidSessionID = errors.New("invalid chat session id")
	validSessionID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func checkSessionID(id string) error {
	if !validSessionID.MatchString(id) {
		return ErrInvalidSessionID
	}
	return nil
}

// RedisTranscriptStore keeps one JSON document per session with a TTL.
type RedisTranscriptStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTranscriptStore(client *redis.Client, prefix string, ttl time.Duration) *RedisTranscriptStore {
	if prefix == "" {
		prefix = "diy"
	}
	return &RedisTranscriptStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisTranscriptStore) key(sessionID string) string {
	return s.prefix + ":transcript:" + sessionID
}

func (s *RedisTranscriptStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	b, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return turns, nil
}

func (s *RedisTranscriptStore) Save(ctx context.Context, sessionID string, turns []Turn) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sessionID), b, s.ttl).Err()
}

func (s *RedisTranscriptStore) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// FileTranscriptStore writes one JSON file per session under Dir.
type FileTranscriptStore struct {
	Dir string
}

func NewFileTranscriptStore(dir string) (*FileTranscriptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &FileTranscriptStore{Dir: dir}, nil
}

func (s *FileTranscriptStore) path(sessionID string) string {
	return filepath.Join(s.Dir, sessionID+".json")
}

func (s *FileTranscriptStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return turns, nil
}

// Save replaces the snapshot via a temp file and rename.
func (s *FileTranscriptStore) Save(ctx context.Context, sessionID string, turns []Turn) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	b, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, sessionID+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(sessionID))
}

func (s *FileTranscriptStore) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
