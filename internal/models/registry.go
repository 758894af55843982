package models

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks the records created by a session, keyed by project name.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Create builds a record from specs and registers it. A second record for an
// existing project is rejected with ErrDuplicateProject and the first record
// is left untouched.
func (reg *Registry) Create(specs Specs) (*Record, error) {
	rec, err := NewRecord(specs)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.records[rec.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProject, rec.Name)
	}
	reg.records[rec.Name] = rec
	return rec, nil
}

// Get returns the record for project.
func (reg *Registry) Get(project string) (*Record, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rec, ok := reg.records[project]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, project)
	}
	return rec, nil
}

// Names returns the registered project names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.records))
	for n := range reg.records {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Remove drops a record. It reports whether the project was registered.
func (reg *Registry) Remove(project string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.records[project]; !ok {
		return false
	}
	delete(reg.records, project)
	return true
}
