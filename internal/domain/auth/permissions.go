package auth

import "slices"

// Permission codes checked by the HTTP layer.
const (
	PermCatalogRead   = "catalog:read"
	PermCatalogWrite  = "catalog:write"
	PermDocumentRead  = "document:read"
	PermDocumentWrite = "document:write"
	PermPaymentRead   = "payment:read"
	PermPaymentWrite  = "payment:write"
	PermReportRead    = "report:read"
	PermUserManage    = "user:manage"
)

// Built-in roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleClerk   = "clerk"
	RoleViewer  = "viewer"
)

var rolePermissions = map[string][]string{
	RoleManager: {
		PermCatalogRead, PermCatalogWrite,
		PermDocumentRead, PermDocumentWrite,
		PermPaymentRead, PermPaymentWrite,
		PermReportRead,
	},
	RoleClerk: {
		PermCatalogRead,
		PermDocumentRead, PermDocumentWrite,
		PermPaymentRead,
	},
	RoleViewer: {
		PermCatalogRead, PermDocumentRead, PermPaymentRead, PermReportRead,
	},
}

// KnownRole reports whether role is built in.
func KnownRole(role string) bool {
	if role == RoleAdmin {
		return true
	}
	_, ok := rolePermissions[role]
	return ok
}

// PermissionsFor flattens the permissions of roles, sorted and deduplicated.
func PermissionsFor(roles []string) []string {
	var out []string
	for _, r := range roles {
		out = append(out, rolePermissions[r]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
