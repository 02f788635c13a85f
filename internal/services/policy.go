package services

import (
	"github.com/togglekeep/togglekeep/internal/models"
)

// Operation names used by the access policy table and the route layer.
const (
	OpLogin           = "auth.login"
	OpRegister        = "auth.register"
	OpFlagRead        = "flags.read"
	OpFlagCreate      = "flags.create"
	OpFlagUpdate      = "flags.update"
	OpFlagDelete      = "flags.delete"
	OpFlagToggle      = "flags.toggle"
	OpFlagToggleByTag = "flags.toggle_by_tag"
	OpUserList        = "users.list"
	OpUserEdit        = "users.edit"
	OpUserDeactivate  = "users.deactivate"
)

// operationRoles is the static access table evaluated before any
// handler runs. An operation absent from this table and from
// publicOperations is denied for every role.
var operationRoles = map[string][]string{
	OpRegister:        {models.RoleAdmin},
	OpFlagCreate:      {models.RoleAdmin},
	OpFlagUpdate:      {models.RoleAdmin},
	OpFlagDelete:      {models.RoleAdmin},
	OpFlagToggle:      {models.RoleAdmin, models.RoleUser},
	OpFlagToggleByTag: {models.RoleAdmin, models.RoleUser},
	OpUserList:        {models.RoleAdmin},
	OpUserEdit:        {models.RoleAdmin},
	OpUserDeactivate:  {models.RoleAdmin},
}

// publicOperations need no authenticated principal at all.
var publicOperations = map[string]bool{
	OpLogin:    true,
	OpFlagRead: true,
}

// IsPublic reports whether operation is open to unauthenticated callers.
func IsPublic(operation string) bool {
	return publicOperations[operation]
}

// Authorize reports whether role may invoke operation. Public
// operations are allowed for any role, including none.
func Authorize(operation, role string) bool {
	if publicOperations[operation] {
		return true
	}
	for _, allowed := range operationRoles[operation] {
		if allowed == role {
			return true
		}
	}
	return false
}
