package models

// Role groups permissions. Replacing a role's permission set always replaces
// the whole set; links cascade when the role is deleted.
type Role struct {
	BaseModel

	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	Permissions []Permission `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	Accounts    []Account    `gorm:"foreignKey:RoleID" json:"-"`
}
