package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleTurns() []Turn {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []Turn{
		{Role: RoleUser, Content: "how do I fix a leak", Timestamp: ts},
		{Role: RoleAssistant, Content: "turn off the water", Timestamp: ts.Add(time.Second)},
	}
}

func exerciseStore(t *testing.T, s TranscriptStore) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected empty load, got %v, %v", got, err)
	}

	if err := s.Save(ctx, "abc-123", sampleTurns()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load(ctx, "abc-123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].Content != "turn off the water" || !got[0].Timestamp.Equal(sampleTurns()[0].Timestamp) {
		t.Fatalf("unexpected transcript: %+v", got)
	}

	if err := s.Delete(ctx, "abc-123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "abc-123"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if got, _ := s.Load(ctx, "abc-123"); got != nil {
		t.Fatalf("transcript survived delete: %+v", got)
	}

	if err := s.Save(ctx, "../escape", nil); !errors.Is(err, ErrInvalidSessionID) {
		t.Fatalf("expected ErrInvalidSessionID, got %v", err)
	}
}

func TestFileTranscriptStore(t *testing.T) {
	s, err := NewFileTranscriptStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStore(t, s)
}

func TestRedisTranscriptStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisTranscriptStore(client, "test", time.Hour)
	exerciseStore(t, s)

	if err := s.Save(context.Background(), "ttl", sampleTurns()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("test:transcript:ttl"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if got, _ := s.Load(context.Background(), "ttl"); got != nil {
		t.Fatalf("expected expired transcript")
	}
}

func TestManager_RedisExpiryEmptiesHistory(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewManager(NewRedisTranscriptStore(client, "test", time.Hour), &recordingCompleter{reply: "ok"}, Options{})
	if _, err := m.Converse(ctx, "s1", "patch drywall"); err != nil {
		t.Fatalf("converse: %v", err)
	}
	if hist, _ := m.History(ctx, "s1"); len(hist) != 2 {
		t.Fatalf("expected 2 turns before expiry, got %d", len(hist))
	}

	mr.FastForward(2 * time.Hour)
	hist, err := m.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected expired history to be empty, got %d turns", len(hist))
	}
}
