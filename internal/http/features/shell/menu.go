package shell

import (
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// Menu is the full sidebar in display order.
var Menu = []pages.MenuItem{
	{Key: "posts", Path: "/posts", Roles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleManager, domain.RoleEditor}},
	{Key: "hours", Path: "/hours", Roles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleManager, domain.RoleEditor}},
	{Key: "users", Path: "/users", Roles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleManager}},
	{Key: "configs", Path: "/configs", Roles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}},
	{Key: "tenants", Path: "/tenants", Roles: []domain.Role{domain.RoleSuperAdmin}},
}

// VisibleMenu returns the items whose role set contains role.
func VisibleMenu(role domain.Role) []pages.MenuItem {
	var items []pages.MenuItem
	for _, item := range Menu {
		if role.HasAnyRole(item.Roles...) {
			items = append(items, item)
		}
	}
	return items
}

// Roles returns the role set of the menu item with the given key.
func Roles(key string) []domain.Role {
	for _, item := range Menu {
		if item.Key == key {
			return item.Roles
		}
	}
	return nil
}
