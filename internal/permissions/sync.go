package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/fitcentre/internal/models"
)

// Sync persists registered permissions to the backing database. Existing rows
// keep their IDs; only the description is refreshed.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	perms := GetAll()
	if len(perms) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, perm := range perms {
		record := models.Permission{
			Group:       perm.Group,
			Name:        perm.Name,
			Description: perm.Description,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_name"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", perm.Key(), err)
		}
	}

	return nil
}

// LoadByKeys returns the stored permissions matching the given keys. Unknown
// keys are reported in missing.
func LoadByKeys(ctx context.Context, db *gorm.DB, keys []string) (found []models.Permission, missing []string, err error) {
	var all []models.Permission
	if err := db.WithContext(ensureContext(ctx)).Find(&all).Error; err != nil {
		return nil, nil, fmt.Errorf("permission: load catalogue: %w", err)
	}

	byKey := make(map[string]models.Permission, len(all))
	for _, perm := range all {
		byKey[perm.Key()] = perm
	}

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if perm, ok := byKey[key]; ok {
			found = append(found, perm)
		} else {
			missing = append(missing, key)
		}
	}
	return found, missing, nil
}
