package common

import "testing"

func TestNewULID_UniqueAndSized(t *testing.T) {
	a, err := NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	b, err := NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("unexpected lengths: %d %d", len(a), len(b))
	}
	if a == b {
		t.Fatalf("expected distinct ids")
	}
}
