package models

// MemberRef identifies a group member who may or may not have an account
// yet. Exactly one of the two cases applies:
//
//   - registered: UserID is set (Email is the address on file)
//   - invited: UserID is empty and Email identifies the pending member
//
// Balance computations only ever see registered members; invited members
// appear in member lists and counts but carry no ledger entries until they
// sign up.
type MemberRef struct {
	// UserID references a User, or is empty for an invited member.
	UserID string `json:"userId,omitempty"`

	// Email is the member's email address. Always set.
	Email string `json:"email"`
}

// Registered reports whether the member has an account.
func (r MemberRef) Registered() bool { return r.UserID != "" }

// Membership is one entry in a group's member list.
type Membership struct {
	User MemberRef `json:"user"`

	// Role is the member's role within the group (e.g. "admin", "member").
	Role string `json:"role"`

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64 `json:"joinedAt"`
}

// Group represents a named set of members sharing a ledger.
// The member list is the sole authority on who may view the group's ledger.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// CreatedBy references the User who created the group.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`

	// Members is the ordered member list.
	Members []Membership `json:"members"`
}

// HasMember reports whether userID appears in the member list.
// Invited members (no account yet) never match.
func (g *Group) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	for _, m := range g.Members {
		if m.User.UserID == userID {
			return true
		}
	}
	return false
}
