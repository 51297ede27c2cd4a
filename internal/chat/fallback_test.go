package chat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFallback_CategoryOrder(t *testing.T) {
	table := MustDefaultFallback()
	cases := map[string]string{
		"What paint for a bathroom?":     "painting",
		"Leaky PIPE under the sink":      "plumbing",
		"Laying tile in the hallway":     "flooring",
		"Replace a light switch":         "electrical",
		"Paint the pipe near the outlet": "painting",
		"hello":                          "default",
	}
	for msg, want := range cases {
		if got := table.Category(msg); got != want {
			t.Fatalf("Category(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestFallback_ReplyStable(t *testing.T) {
	table := MustDefaultFallback()
	a := table.Reply("How should I wire an outlet?")
	b := table.Reply("how should i wire an outlet?")
	if a != b {
		t.Fatalf("reply should ignore case: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatalf("empty reply")
	}
}

func TestIsDIYRelated(t *testing.T) {
	table := MustDefaultFallback()
	if !table.IsDIYRelated("Can I remodel my Kitchen myself?") {
		t.Fatalf("expected kitchen remodel to be DIY related")
	}
	if table.IsDIYRelated("what is the capital of France") {
		t.Fatalf("did not expect geography to be DIY related")
	}
}

func TestLoadFallback_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replies.yaml")
	body := "categories:\n  - name: roofing\n    keywords: [Roof]\n    replies: [\"Check the flashing.\"]\ndefault: [\"Ask me anything.\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := LoadFallback(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.Reply("my roof leaks"); got != "Check the flashing." {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := table.Reply("hi"); got != "Ask me anything." {
		t.Fatalf("unexpected default %q", got)
	}
}

func TestParseFallback_RequiresDefault(t *testing.T) {
	if _, err := ParseFallback([]byte("categories: []\n")); err == nil {
		t.Fatalf("expected error for missing default replies")
	}
}
