package models

// Permission is a grantable capability identified by its group and name.
type Permission struct {
	BaseModel

	Group       string `gorm:"column:group_name;size:100;not null;uniqueIndex:idx_permissions_group_name" json:"group"`
	Name        string `gorm:"size:100;not null;uniqueIndex:idx_permissions_group_name" json:"name"`
	Description string `json:"description,omitempty"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"-"`
}

// Key returns the "{group}-{name}" string checked by the authorization gate.
func (p Permission) Key() string {
	return p.Group + "-" + p.Name
}
