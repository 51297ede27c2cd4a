package chat

import (
	_ "embed"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var defaultFallbackYAML []byte

type FallbackCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Replies  []string `yaml:"replies"`
}

type fallbackFile struct {
	Categories    []FallbackCategory `yaml:"categories"`
	Default       []string           `yaml:"default"`
	TopicKeywords []string           `yaml:"topicKeywords"`
}

// FallbackTable is the keyword -> canned reply table. It is read once and
// never modified afterwards.
type FallbackTable struct {
	categories    []FallbackCategory
	defaults      []string
	topicKeywords []string
}

// LoadFallback reads the table from path, or the built-in table when path is empty.
func LoadFallback(path string) (*FallbackTable, error) {
	data := defaultFallbackYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fallback replies: %w", err)
		}
		data = b
	}
	return ParseFallback(data)
}

func ParseFallback(data []byte) (*FallbackTable, error) {
	var f fallbackFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fallback replies: %w", err)
	}
	if len(f.Default) == 0 {
		return nil, errors.New("fallback replies: default list is empty")
	}
	t := &FallbackTable{defaults: f.Default}
	for _, c := range f.Categories {
		if len(c.Keywords) == 0 || len(c.Replies) == 0 {
			return nil, fmt.Errorf("fallback replies: category %q needs keywords and replies", c.Name)
		}
		kw := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			kw = append(kw, strings.ToLower(k))
		}
		t.categories = append(t.categories, FallbackCategory{Name: c.Name, Keywords: kw, Replies: c.Replies})
	}
	for _, k := range f.TopicKeywords {
		t.topicKeywords = append(t.topicKeywords, strings.ToLower(k))
	}
	return t, nil
}

// MustDefaultFallback returns the built-in table.
func MustDefaultFallback() *FallbackTable {
	t, err := ParseFallback(defaultFallbackYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Reply picks a canned reply for message. The same message always yields the
// same reply.
func (t *FallbackTable) Reply(message string) string {
	lower := strings.ToLower(message)
	for _, c := range t.categories {
		if containsAny(lower, c.Keywords) {
			return pick(c.Replies, lower)
		}
	}
	return pick(t.defaults, lower)
}

// Category reports which category Reply would use ("default" when none match).
func (t *FallbackTable) Category(message string) string {
	lower := strings.ToLower(message)
	for _, c := range t.categories {
		if containsAny(lower, c.Keywords) {
			return c.Name
		}
	}
	return "default"
}

// IsDIYRelated reports whether message mentions a home-improvement topic.
func (t *FallbackTable) IsDIYRelated(message string) bool {
	return containsAny(strings.ToLower(message), t.topicKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func pick(options []string, key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return options[int(h.Sum32()%uint32(len(options)))]
}
