package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Permission describes a grantable capability known to the application.
type Permission struct {
	Group       string
	Name        string
	Description string
}

// Key returns the "{group}-{name}" form used by the authorization gate.
func (p Permission) Key() string {
	return Key(p.Group, p.Name)
}

// Key joins a group and name the way stored permissions are flattened.
func Key(group, name string) string {
	return group + "-" + name
}

type permissionRegistry struct {
	mu          sync.RWMutex
	permissions map[string]*Permission
}

var globalRegistry = &permissionRegistry{
	permissions: make(map[string]*Permission),
}

var (
	errNilPermission = errors.New("permission: nil definition")
	errEmptyGroup    = errors.New("permission: group is required")
	errEmptyName     = errors.New("permission: name is required")
	errDuplicateKey  = errors.New("permission: already registered")
)

// Register adds a permission definition to the global registry.
func Register(perm *Permission) error {
	if perm == nil {
		return errNilPermission
	}

	def := *perm
	def.Group = strings.TrimSpace(def.Group)
	def.Name = strings.TrimSpace(def.Name)
	if def.Group == "" {
		return errEmptyGroup
	}
	if def.Name == "" {
		return errEmptyName
	}

	key := def.Key()

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.permissions[key]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKey, key)
	}

	globalRegistry.permissions[key] = &def
	return nil
}

// MustRegister is Register for package initialisation.
func MustRegister(perms ...*Permission) {
	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}

// Get returns a copy of the permission definition when registered.
func Get(key string) (*Permission, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	perm, ok := globalRegistry.permissions[key]
	if !ok {
		return nil, false
	}
	cp := *perm
	return &cp, true
}

// GetAll returns every registered permission ordered by group then name.
func GetAll() []Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make([]Permission, 0, len(globalRegistry.permissions))
	for _, perm := range globalRegistry.permissions {
		out = append(out, *perm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GetByGroup gathers permissions registered under the specified group.
func GetByGroup(group string) []Permission {
	group = strings.TrimSpace(group)
	var perms []Permission
	for _, perm := range GetAll() {
		if perm.Group == group {
			perms = append(perms, perm)
		}
	}
	return perms
}

func removePermission(key string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.permissions, key)
}
