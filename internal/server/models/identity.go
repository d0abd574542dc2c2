package models

import "time"

// Role is the authorization role of an identity.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleVendor    Role = "VENDOR"
	RoleSuperUser Role = "SUPER_USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleSuperUser:
		return true
	}
	return false
}

// Platform reports whether r is a platform-level role not bound to a vendor.
func (r Role) Platform() bool {
	return r == RoleAdmin || r == RoleSuperUser
}

// Identity is an authenticating principal. The stored refresh token is not
// part of it; only the sessions repository reads or writes that column.
type Identity struct {
	ID              string
	FullName        string
	Email           string
	PasswordHash    string
	Role            Role
	VendorID        *string
	IsActive        bool
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VendorRef returns the vendor id or "" for platform identities.
func (i *Identity) VendorRef() string {
	if i.VendorID == nil {
		return ""
	}
	return *i.VendorID
}
