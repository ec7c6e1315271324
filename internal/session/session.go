package session

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSalonAdmin Role = "salon_admin"
	RoleSuperAdmin Role = "super_admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleSalonAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Session is the identity a request acts with. The zero value is a guest.
type Session struct {
	UserID string
	Role   Role
	Email  string
}

func Guest() Session { return Session{} }

func (s Session) Authenticated() bool { return s.UserID != "" }

// CanManageSalon reports whether s may edit the salon owned by ownerID.
func (s Session) CanManageSalon(ownerID string) bool {
	if !s.Authenticated() {
		return false
	}
	switch s.Role {
	case RoleSuperAdmin:
		return true
	case RoleSalonAdmin:
		return s.UserID == ownerID
	case RoleCustomer:
		return false
	default:
		return false
	}
}

// CanViewCustomer reports whether s may read data belonging to customerID.
func (s Session) CanViewCustomer(customerID string) bool {
	if !s.Authenticated() {
		return false
	}
	switch s.Role {
	case RoleSuperAdmin:
		return true
	case RoleSalonAdmin, RoleCustomer:
		return s.UserID == customerID
	default:
		return false
	}
}

func (s Session) IsSuperAdmin() bool {
	return s.Authenticated() && s.Role == RoleSuperAdmin
}

type ctxKey struct{}

// WithSession is only used at the HTTP edge; handlers pull the session out
// once and pass it explicitly to services.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
