package models

// RoleAdmin is the elevated role permitting operations on orders the actor
// does not own.
const RoleAdmin = "admin"

// Actor is the authenticated identity performing an operation. Token carries
// the original bearer credential so it can be forwarded to the Users and
// Inventory services.
type Actor struct {
	ID    string
	Role  string
	Token string
}

// IsAdmin reports whether the actor holds the elevated role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
