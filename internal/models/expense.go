package models

// Split is one participant's owed portion of an expense.
type Split struct {
	// UserID references the participant who owes this portion.
	UserID string `json:"userId"`

	// Amount is the portion owed.
	Amount float64 `json:"amount"`

	// Paid marks this portion as settled. Once true, the portion is
	// excluded from all balance computations. This is authoritative local
	// state, not derived from settlements.
	Paid bool `json:"paid"`
}

// Expense represents a cost paid by one user and split among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Description is a human-readable label (e.g. "Dinner", "Rent").
	Description string `json:"description"`

	// Amount is the full expense amount, always positive.
	Amount float64 `json:"amount"`

	// Category is an optional category tag.
	Category string `json:"category,omitempty"`

	// Date is the Unix timestamp the expense occurred.
	Date int64 `json:"date"`

	// PaidByUserID references the User who paid.
	PaidByUserID string `json:"paidByUserId"`

	// SplitType tags how the splits were produced (e.g. "equal", "exact",
	// "percentage"). Informational; the splits themselves are authoritative.
	SplitType string `json:"splitType"`

	// GroupID references the Group this expense belongs to, or is empty
	// for a personal (1-to-1) expense.
	GroupID string `json:"groupId,omitempty"`

	// CreatedBy references the User who recorded the expense.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`

	// Splits is the ordered list of owed portions, one per participant.
	Splits []Split `json:"splits"`
}

// Personal reports whether the expense has no group association.
func (e *Expense) Personal() bool { return e.GroupID == "" }

// SplitFor returns the split belonging to userID, or nil.
func (e *Expense) SplitFor(userID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].UserID == userID {
			return &e.Splits[i]
		}
	}
	return nil
}

// Involves reports whether userID is the payer or a split participant.
func (e *Expense) Involves(userID string) bool {
	return e.PaidByUserID == userID || e.SplitFor(userID) != nil
}
