package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleStoreOwner Role = "store_owner"
)

// NormalizeRole maps raw role input to the closed enum, tolerating
// casing and separator variants ("Store-Owner", "store owner",
// "STOREOWNER"). Unknown values fall back to RoleUser. It is applied
// once, when a session identity is constructed; nothing downstream
// re-parses role strings.
func NormalizeRole(raw string) Role {
	r := strings.ToLower(strings.TrimSpace(raw))
	r = strings.NewReplacer("-", "_", " ", "_").Replace(r)
	switch r {
	case "admin":
		return RoleAdmin
	case "store_owner", "storeowner":
		return RoleStoreOwner
	case "user", "":
		return RoleUser
	default:
		if strings.Contains(r, "store") {
			return RoleStoreOwner
		}
		return RoleUser
	}
}

// Valid reports whether the role is one of the closed enum values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	}
	return false
}
