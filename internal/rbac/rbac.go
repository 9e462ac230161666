// Package rbac holds the static role → permission table and the pure decision
// function used by every protected endpoint.
package rbac

import (
	"fmt"
	"strings"
)

// Role is a role name as stored on the roles table.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleCashier Role = "Cashier"
	// RoleViewer only exists in the permission table; it cannot be assigned to a user.
	RoleViewer Role = "Viewer"
)

// Permission is a "resource:action" token.
type Permission string

const (
	ProductsRead   Permission = "products:read"
	ProductsCreate Permission = "products:create"
	ProductsUpdate Permission = "products:update"
	ProductsDelete Permission = "products:delete"

	CategoriesRead   Permission = "categories:read"
	CategoriesCreate Permission = "categories:create"
	CategoriesUpdate Permission = "categories:update"
	CategoriesDelete Permission = "categories:delete"

	InvoicesRead   Permission = "invoices:read"
	InvoicesCreate Permission = "invoices:create"
	InvoicesUpdate Permission = "invoices:update"
	InvoicesDelete Permission = "invoices:delete"

	ReportsRead   Permission = "reports:read"
	ReportsExport Permission = "reports:export"

	UsersRead   Permission = "users:read"
	UsersCreate Permission = "users:create"
	UsersUpdate Permission = "users:update"
	UsersDelete Permission = "users:delete"

	SettingsRead   Permission = "settings:read"
	SettingsUpdate Permission = "settings:update"

	PaymentMethodsRead   Permission = "payment-methods:read"
	PaymentMethodsCreate Permission = "payment-methods:create"
	PaymentMethodsUpdate Permission = "payment-methods:update"
	PaymentMethodsDelete Permission = "payment-methods:delete"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		ProductsRead, ProductsCreate, ProductsUpdate, ProductsDelete,
		CategoriesRead, CategoriesCreate, CategoriesUpdate, CategoriesDelete,
		InvoicesRead, InvoicesCreate, InvoicesUpdate, InvoicesDelete,
		ReportsRead, ReportsExport,
		UsersRead, UsersCreate, UsersUpdate, UsersDelete,
		SettingsRead, SettingsUpdate,
		PaymentMethodsRead, PaymentMethodsCreate, PaymentMethodsUpdate, PaymentMethodsDelete,
	},
	RoleManager: {
		ProductsRead, ProductsCreate, ProductsUpdate,
		CategoriesRead, CategoriesCreate, CategoriesUpdate,
		InvoicesRead, InvoicesCreate,
		ReportsRead, ReportsExport,
		PaymentMethodsRead,
	},
	RoleCashier: {
		ProductsRead,
		CategoriesRead,
		InvoicesRead, InvoicesCreate,
		ReportsRead,
	},
	RoleViewer: {
		ProductsRead,
		CategoriesRead,
		InvoicesRead,
		ReportsRead,
	},
}

var roleLevels = map[Role]int{
	RoleViewer:  0,
	RoleCashier: 1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// permissionSets is the lookup form of rolePermissions, built once at init.
var permissionSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// AssignableRoles are the roles a user record may carry.
func AssignableRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCashier}
}

// IsAssignable reports whether role may be stored on a user.
func IsAssignable(role Role) bool {
	for _, r := range AssignableRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// Roles lists every role present in the permission table.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCashier, RoleViewer}
}

// Permissions returns a copy of the role's permission list; unknown roles get none.
func Permissions(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role is granted perm.
func HasPermission(role Role, perm Permission) bool {
	_, ok := permissionSets[role][perm]
	return ok
}

// Level returns the numeric rank of role and whether the role is known.
func Level(role Role) (int, bool) {
	lvl, ok := roleLevels[role]
	return lvl, ok
}

type requirementKind int

const (
	allOf requirementKind = iota
	anyOf
	minRole
)

// Requirement describes what a caller needs for an operation.
type Requirement struct {
	kind  requirementKind
	perms []Permission
	role  Role
}

// AllOf requires every listed permission.
func AllOf(perms ...Permission) Requirement {
	return Requirement{kind: allOf, perms: perms}
}

// AnyOf requires at least one of the listed permissions.
func AnyOf(perms ...Permission) Requirement {
	return Requirement{kind: anyOf, perms: perms}
}

// MinRole requires a role level at or above role.
func MinRole(role Role) Requirement {
	return Requirement{kind: minRole, role: role}
}

func (r Requirement) String() string {
	switch r.kind {
	case minRole:
		return "min_role:" + string(r.role)
	case anyOf:
		return "any_of:" + joinPerms(r.perms, ",")
	default:
		return "all_of:" + joinPerms(r.perms, ",")
	}
}

func joinPerms(perms []Permission, sep string) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, sep)
}

// Decision is the outcome of Authorize. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize decides whether role satisfies req. It has no side effects.
func Authorize(role Role, req Requirement) Decision {
	if role == "" {
		return deny("no role assigned")
	}

	switch req.kind {
	case minRole:
		need, ok := Level(req.role)
		if !ok {
			return deny(fmt.Sprintf("unknown required role %q", req.role))
		}
		if have, ok := Level(role); !ok || have < need {
			return deny(fmt.Sprintf("requires role %s or higher", req.role))
		}
		return allow()

	case anyOf:
		for _, p := range req.perms {
			if HasPermission(role, p) {
				return allow()
			}
		}
		return deny("requires one of " + joinPerms(req.perms, ", "))

	default:
		for _, p := range req.perms {
			if !HasPermission(role, p) {
				return deny("missing permission " + string(p))
			}
		}
		return allow()
	}
}
