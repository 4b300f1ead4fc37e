package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Encoder renders a summary in one output format.
type Encoder func(*Summary) ([]byte, error)

// Registry maps format names to encoders for the inspect command.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// Register adds an encoder under name, replacing any previous entry.
func (r *Registry) Register(name string, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[name] = enc
}

// Encoder returns the encoder for name.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.available())
	}

	return enc, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formats()
}

// AvailableFormats returns the registered names, comma separated.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.available()
}

func (r *Registry) formats() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) available() string {
	formats := r.formats()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry with the table, json and yaml formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("table", EncodeTable)
	r.Register("json", EncodeJSON)
	r.Register("yaml", EncodeYAML)

	return r
}
