package shared

import "github.com/google/uuid"

// Role is the role carried by an authenticated actor.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

// Actor is the already-authenticated caller of a mutating operation.
// BranchID is set for branch-scoped staff.
type Actor struct {
	ID       uuid.UUID
	Role     Role
	BranchID *uuid.UUID
}

// NewActor creates an actor.
func NewActor(id uuid.UUID, role Role, branchID *uuid.UUID) Actor {
	return Actor{ID: id, Role: role, BranchID: branchID}
}

// IsOwner reports whether the actor has unrestricted access to all branches.
func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

// IsCustomer reports whether the actor is a customer.
func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}

// IsBranchScoped reports whether the actor is restricted to a single branch.
func (a Actor) IsBranchScoped() bool {
	return a.Role == RoleEmployee
}

// BelongsTo reports whether the actor is assigned to the given branch.
func (a Actor) BelongsTo(branchID uuid.UUID) bool {
	return a.BranchID != nil && *a.BranchID == branchID
}

// CanManageBranch reports whether the actor may mutate data of the given branch.
// Owners manage every branch, employees only their own, customers none.
func (a Actor) CanManageBranch(branchID uuid.UUID) bool {
	switch a.Role {
	case RoleOwner:
		return true
	case RoleEmployee:
		return a.BelongsTo(branchID)
	default:
		return false
	}
}

// ScopeBranch narrows an optional branch filter to the actor's own branch.
// It returns ErrForbidden when an employee asks for another branch.
func (a Actor) ScopeBranch(requested *uuid.UUID) (*uuid.UUID, error) {
	if !a.IsBranchScoped() {
		return requested, nil
	}
	if a.BranchID == nil {
		return nil, ErrForbidden
	}
	if requested != nil && *requested != *a.BranchID {
		return nil, NewForbiddenError("view data")
	}
	own := *a.BranchID
	return &own, nil
}

// RequireOwner fails with FORBIDDEN unless the actor is an owner.
func (a Actor) RequireOwner(action string) error {
	if a.IsOwner() {
		return nil
	}
	return NewDomainError(CodeForbidden, "Only owners may "+action)
}

// RequireStaff fails with FORBIDDEN unless the actor is an owner or employee.
func (a Actor) RequireStaff(action string) error {
	if a.Role == RoleOwner || a.Role == RoleEmployee {
		return nil
	}
	return NewDomainError(CodeForbidden, "Only staff may "+action)
}
