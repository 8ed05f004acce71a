package models

// Settlement represents a direct payment between two users that reduces an
// outstanding balance, optionally scoped to a group.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// Amount is the payment amount, always positive.
	Amount float64 `json:"amount"`

	// Note is an optional description.
	Note string `json:"note,omitempty"`

	// Date is the Unix timestamp the payment was made.
	Date int64 `json:"date"`

	// PaidByUserID references the User who paid (debtor settling up).
	PaidByUserID string `json:"paidByUserId"`

	// ReceivedByUserID references the User who received the payment.
	ReceivedByUserID string `json:"receivedByUserId"`

	// GroupID scopes the settlement to a group, or is empty for a
	// personal settlement.
	GroupID string `json:"groupId,omitempty"`

	// RelatedExpenseIDs optionally references the expenses this payment
	// settles. Informational only; balances net by amount.
	RelatedExpenseIDs []string `json:"relatedExpenseIds,omitempty"`

	// CreatedBy references the User who recorded the settlement.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// Personal reports whether the settlement has no group association.
func (s *Settlement) Personal() bool { return s.GroupID == "" }

// Involves reports whether userID is the payer or the receiver.
func (s *Settlement) Involves(userID string) bool {
	return s.PaidByUserID == userID || s.ReceivedByUserID == userID
}
