package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store exposes persona retrieval for HTTP handlers and widgets.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the configured persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadFile reads personas from a YAML document of the form `personas: [...]`.
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file %s: %w", path, err)
	}

	var doc personaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode persona file %s: %w", path, err)
	}
	if len(doc.Personas) == 0 {
		return nil, fmt.Errorf("persona file %s defines no personas", path)
	}

	seen := make(map[string]struct{}, len(doc.Personas))
	for i, p := range doc.Personas {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("persona #%d in %s has no id", i, path)
		}
		if strings.TrimSpace(p.Greeting) == "" {
			// 问候语是会话的第一条消息，不能为空
			return nil, fmt.Errorf("persona %q in %s has no greeting", id, path)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate persona id %q in %s", id, path)
		}
		seen[id] = struct{}{}
		doc.Personas[i].ID = id
	}
	return doc.Personas, nil
}

// Open returns the personas from path, or the built-in seed when path is
// empty. defaultID must name one of them.
func Open(path, defaultID string) (*MemoryStore, error) {
	items := Seed()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		items = loaded
	}

	store := NewMemoryStore(items)
	if _, ok := store.FindByID(defaultID); !ok {
		return nil, fmt.Errorf("default persona %q not found", defaultID)
	}
	return store, nil
}
