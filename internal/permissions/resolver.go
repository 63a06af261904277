package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
)

// ErrAccountNotFound is returned when the account being resolved does not exist.
var ErrAccountNotFound = errors.New("permission resolver: account not found")

// Set is a flattened collection of "{group}-{name}" permission strings.
type Set map[string]struct{}

// NewSet builds a set from keys.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, key := range keys {
		s[key] = struct{}{}
	}
	return s
}

// Has reports whether key is granted.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Missing returns the required keys that are not granted, in input order.
// An empty result means every requirement is satisfied.
func (s Set) Missing(required ...string) []string {
	var missing []string
	for _, key := range required {
		if !s.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// ContainsAll reports whether every required key is granted.
func (s Set) ContainsAll(required ...string) bool {
	return len(s.Missing(required...)) == 0
}

// Sorted returns the keys in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Resolver expands Account -> Role -> Permissions into a Set. There are no
// implicit roles: every grant comes from a stored role-permission link.
type Resolver struct {
	db *gorm.DB
}

// NewResolver constructs a resolver backed by the provided database.
func NewResolver(db *gorm.DB) (*Resolver, error) {
	if db == nil {
		return nil, errors.New("permission resolver: db is required")
	}
	return &Resolver{db: db}, nil
}

// Resolve returns the permission set granted to the account.
func (r *Resolver) Resolve(ctx context.Context, accountID string) (Set, error) {
	ctx = ensureContext(ctx)

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, errors.New("permission resolver: account id is required")
	}

	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Take(&account, "id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("permission resolver: load account: %w", err)
	}

	set := make(Set)
	if account.Role == nil {
		return set, nil
	}
	for _, perm := range account.Role.Permissions {
		set[perm.Key()] = struct{}{}
	}
	return set, nil
}

// Check reports whether the account holds every required permission.
func (r *Resolver) Check(ctx context.Context, accountID string, required ...string) (bool, error) {
	set, err := r.Resolve(ctx, accountID)
	if err != nil {
		return false, err
	}
	return set.ContainsAll(required...), nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
