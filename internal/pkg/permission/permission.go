// Package permission holds the access policies shared by the HTTP handlers.
// Each policy is a pure predicate over the request method, the acting
// principal and, where relevant, the resource owner.
package permission

import "net/http"

const roleAdmin = "admin"

// Principal is the acting user. The zero value is anonymous.
type Principal struct {
	UserID int64
	Role   string
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsStaff() bool {
	return p.IsAuthenticated() && p.Role == roleAdmin
}

// IsSafeMethod reports whether method never mutates state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrReadOnly allows safe methods to anyone and everything else to staff.
func AdminOrReadOnly(safe bool, p Principal) bool {
	return safe || p.IsStaff()
}

// OwnerOrReadOnly allows safe methods to anyone and everything else to the
// resource owner.
func OwnerOrReadOnly(safe bool, p Principal, ownerID int64) bool {
	return safe || (p.IsAuthenticated() && p.UserID == ownerID)
}

// OwnerOrAdmin allows the owner or staff. Used for deletions.
func OwnerOrAdmin(p Principal, ownerID int64) bool {
	return p.IsStaff() || (p.IsAuthenticated() && p.UserID == ownerID)
}
