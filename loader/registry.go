package loader

import (
	"sync"

	"github.com/halvorsen/grammarcore"
)

// ScopeRegistry interns dotted scope-name strings (e.g.
// "string.quoted.double.js") into the compact grammarcore.ScopeName
// handles the renderer deals in, and resolves them back for themes and
// highlighters that need the text form. Safe for concurrent use, since a
// single registry is typically shared across every grammar a Loader
// compiles.
type ScopeRegistry struct {
	mu    sync.RWMutex
	byName map[string]grammarcore.ScopeName
	names []string // names[s-1] is the text for ScopeName s; NoScope has no entry
}

// NewScopeRegistry returns an empty registry. ScopeName 0 is always
// grammarcore.NoScope and is never assigned a name.
func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{byName: make(map[string]grammarcore.ScopeName)}
}

// Intern returns name's ScopeName, assigning a new one on first use. The
// empty string always interns to grammarcore.NoScope.
func (r *ScopeRegistry) Intern(name string) grammarcore.ScopeName {
	if name == "" {
		return grammarcore.NoScope
	}
	r.mu.RLock()
	if s, ok := r.byName[name]; ok {
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byName[name]; ok {
		return s
	}
	r.names = append(r.names, name)
	s := grammarcore.ScopeName(len(r.names))
	r.byName[name] = s
	return s
}

// Name resolves s back to the dotted scope string it was interned from, or
// "" for grammarcore.NoScope or an unknown handle.
func (r *ScopeRegistry) Name(s grammarcore.ScopeName) string {
	if s == grammarcore.NoScope {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := int(s) - 1
	if i < 0 || i >= len(r.names) {
		return ""
	}
	return r.names[i]
}
