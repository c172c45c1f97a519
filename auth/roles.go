package auth

import "github.com/waqtek/hr-ledger/ledger"

// Allowed reports whether role is in the allow-list.
func Allowed(role ledger.Role, allowed ...ledger.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// CanAssignRole reports whether the actor may create an account carrying
// the target role. Admins assign anything; HR only regular staff roles.
func CanAssignRole(actor, target ledger.Role) bool {
	switch actor {
	case ledger.RoleAdmin:
		return target.Valid()
	case ledger.RoleHR:
		return target == ledger.RoleEmployee || target == ledger.RoleManager
	}
	return false
}
