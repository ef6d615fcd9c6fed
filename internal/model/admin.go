package model

import "strings"

type PlatformStats struct {
	Businesses       int `db:"businesses" json:"businesses"`
	ActiveBusinesses int `db:"active_businesses" json:"active_businesses"`
	Users            int `db:"users" json:"users"`
	Owners           int `db:"owners" json:"owners"`
}

// BusinessSummary is a business with platform-level counters.
type BusinessSummary struct {
	Business
	MemberCount  int `db:"member_count" json:"member_count"`
	OrderCount   int `db:"order_count" json:"order_count"`
	ProductCount int `db:"product_count" json:"product_count"`
}

// PlatformUser is a profile as seen from the admin console.
type PlatformUser struct {
	Profile
	BusinessName *string `db:"business_name" json:"business_name"`
	RoleList     string  `db:"role_list" json:"-"`
}

// Roles splits the comma-separated aggregate loaded from user_roles.
func (u PlatformUser) Roles() []Role {
	roles := []Role{}
	for _, r := range strings.Split(u.RoleList, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, Role(r))
		}
	}
	return roles
}
