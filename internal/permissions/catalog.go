package permissions

const (
	GroupAds   = "Ads Management"
	GroupRoles = "Role Management"
	GroupUsers = "User Management"

	ActionCreate = "Create"
	ActionList   = "List"
	ActionEdit   = "Edit"
	ActionView   = "View"
	ActionDelete = "Delete"
)

// Well-known permission keys used by route declarations.
var (
	AdsCreate = Key(GroupAds, ActionCreate)
	AdsList   = Key(GroupAds, ActionList)
	AdsEdit   = Key(GroupAds, ActionEdit)
	AdsView   = Key(GroupAds, ActionView)
	AdsDelete = Key(GroupAds, ActionDelete)

	RolesCreate = Key(GroupRoles, ActionCreate)
	RolesList   = Key(GroupRoles, ActionList)
	RolesEdit   = Key(GroupRoles, ActionEdit)
	RolesView   = Key(GroupRoles, ActionView)
	RolesDelete = Key(GroupRoles, ActionDelete)

	UsersCreate = Key(GroupUsers, ActionCreate)
	UsersList   = Key(GroupUsers, ActionList)
	UsersEdit   = Key(GroupUsers, ActionEdit)
)

// Seeded role names.
const (
	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
	RoleMarketing  = "Marketing"
	RoleSales      = "Sales"
)

func init() {
	MustRegister(
		&Permission{Group: GroupAds, Name: ActionCreate, Description: "Create advertisements"},
		&Permission{Group: GroupAds, Name: ActionList, Description: "List advertisements"},
		&Permission{Group: GroupAds, Name: ActionEdit, Description: "Edit advertisements"},
		&Permission{Group: GroupAds, Name: ActionView, Description: "View an advertisement"},
		&Permission{Group: GroupAds, Name: ActionDelete, Description: "Delete advertisements"},

		&Permission{Group: GroupRoles, Name: ActionCreate, Description: "Create roles"},
		&Permission{Group: GroupRoles, Name: ActionList, Description: "List roles and permissions"},
		&Permission{Group: GroupRoles, Name: ActionEdit, Description: "Edit roles and their permission sets"},
		&Permission{Group: GroupRoles, Name: ActionView, Description: "View a role"},
		&Permission{Group: GroupRoles, Name: ActionDelete, Description: "Delete roles"},

		&Permission{Group: GroupUsers, Name: ActionCreate, Description: "Create admin portal accounts"},
		&Permission{Group: GroupUsers, Name: ActionList, Description: "List admin portal accounts"},
		&Permission{Group: GroupUsers, Name: ActionEdit, Description: "Assign roles to accounts"},
	)
}

// DefaultRoleGrants maps each seeded role to its initial permission keys.
// Super Admin is granted every registered permission explicitly.
func DefaultRoleGrants() map[string][]string {
	all := GetAll()
	every := make([]string, 0, len(all))
	for _, perm := range all {
		every = append(every, perm.Key())
	}

	return map[string][]string{
		RoleSuperAdmin: every,
		RoleAdmin:      {AdsCreate, AdsList, AdsEdit, AdsView, AdsDelete, UsersList},
		RoleMarketing:  {AdsCreate, AdsList, AdsEdit, AdsView},
		RoleSales:      {AdsList, AdsView},
	}
}
