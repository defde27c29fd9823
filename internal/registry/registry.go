// Package registry tracks the names of live control manifolds and enforces
// process-wide uniqueness. A single Names instance is shared by every manifold
// built for a planning session; construction registers a name, destruction
// unregisters it, and renames go through Rename so the check-and-swap is
// atomic with respect to concurrent manifold construction.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateName indicates an attempt to register a name already in use.
	ErrDuplicateName = errors.New("registry: manifold name already in use")

	// ErrUnknownName indicates an attempt to unregister or rename a name
	// that was never registered.
	ErrUnknownName = errors.New("registry: no manifold with that name")
)

// Names is a mutex-protected set of in-use manifold names.
type Names struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func New() *Names {
	return &Names{used: make(map[string]struct{})}
}

// Register inserts name into the set. It fails if the name is taken.
func (n *Names) Register(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.used[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	n.used[name] = struct{}{}
	return nil
}

// Unregister removes name from the set. It fails if the name is absent.
func (n *Names) Unregister(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.used[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	delete(n.used, name)
	return nil
}

// Rename atomically replaces oldName with newName. Renaming a name to itself
// is a no-op. The old name must exist and the new name must be free.
func (n *Names) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.used[oldName]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownName, oldName)
	}
	if _, ok := n.used[newName]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}
	delete(n.used, oldName)
	n.used[newName] = struct{}{}
	return nil
}

// InUse reports whether name is currently registered.
func (n *Names) InUse(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, ok := n.used[name]
	return ok
}

// Len returns the number of registered names.
func (n *Names) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.used)
}
