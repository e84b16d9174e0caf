package models

import "github.com/shopspring/decimal"

// Role controls what a member may do with the shared ledger.
type Role string

const (
	// RoleMember is a regular trip member.
	RoleMember Role = "member"

	// RoleOrganizer may edit any member's budget limit and delete any
	// expense, not just their own.
	RoleOrganizer Role = "organizer"
)

// ParseRole maps a raw string onto a known role, defaulting to member.
func ParseRole(s string) Role {
	if Role(s) == RoleOrganizer {
		return RoleOrganizer
	}
	return RoleMember
}

// Person represents one trip member.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name of the person.
	Name string `validate:"required"`

	// Role is the person's permission level within the trip.
	Role Role

	// BudgetLimit is the person's individual spending ceiling. It only
	// feeds progress displays; it never affects balance computation.
	BudgetLimit decimal.Decimal

	// CreatedAt is the Unix timestamp when the person was added.
	CreatedAt int64
}
