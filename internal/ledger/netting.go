// Package ledger implements counterparty netting: combining a set of
// expenses and settlements into signed per-counterparty balances for one
// subject user.
//
// The netting step is pure arithmetic over in-memory records. It imposes no
// ordering on its output; callers sort the merged results. Records that do
// not involve the subject are ignored, so callers may pass over-fetched
// slices (e.g. all of a group's settlements) without pre-filtering.
package ledger

import "github.com/splitr-app/splitr/internal/models"

// Position accumulates the two directions of obligation between the subject
// and one counterparty. Settlements subtract and may drive either bucket
// negative; that is deliberate, so over-payments and ordering edge cases
// survive until the caller reconciles sign via Net.
type Position struct {
	// OwedToSubject is what the counterparty owes the subject.
	OwedToSubject float64

	// OwedBySubject is what the subject owes the counterparty.
	OwedBySubject float64
}

// Net returns the signed balance: positive means the counterparty owes the
// subject, negative means the subject owes the counterparty.
func (p Position) Net() float64 { return p.OwedToSubject - p.OwedBySubject }

// Net computes per-counterparty positions for subjectID over the given
// expenses and settlements.
//
// Rules:
//   - Expense paid by the subject: every other participant's unpaid split
//     adds to that counterparty's OwedToSubject.
//   - Expense paid by someone else: the subject's own unpaid split adds to
//     the payer's OwedBySubject.
//   - Settlement paid by the subject: subtracts from the receiver's
//     OwedBySubject (a payment reduces what the subject owes).
//   - Settlement received by the subject: subtracts from the payer's
//     OwedToSubject.
//
// Splits with Paid set contribute nothing.
func Net(subjectID string, expenses []*models.Expense, settlements []*models.Settlement) map[string]Position {
	positions := make(map[string]Position)

	for _, e := range expenses {
		if e.PaidByUserID == subjectID {
			for _, s := range e.Splits {
				if s.UserID == subjectID || s.Paid {
					continue
				}
				p := positions[s.UserID]
				p.OwedToSubject += s.Amount
				positions[s.UserID] = p
			}
			continue
		}

		if s := e.SplitFor(subjectID); s != nil && !s.Paid {
			p := positions[e.PaidByUserID]
			p.OwedBySubject += s.Amount
			positions[e.PaidByUserID] = p
		}
	}

	for _, s := range settlements {
		switch subjectID {
		case s.PaidByUserID:
			p := positions[s.ReceivedByUserID]
			p.OwedBySubject -= s.Amount
			positions[s.ReceivedByUserID] = p
		case s.ReceivedByUserID:
			p := positions[s.PaidByUserID]
			p.OwedToSubject -= s.Amount
			positions[s.PaidByUserID] = p
		}
	}

	return positions
}

// NetBalances collapses Net's positions to signed balances, dropping
// counterparties whose obligations cancel exactly.
func NetBalances(subjectID string, expenses []*models.Expense, settlements []*models.Settlement) map[string]float64 {
	nets := make(map[string]float64)
	for id, p := range Net(subjectID, expenses, settlements) {
		if n := p.Net(); n != 0 {
			nets[id] = n
		}
	}
	return nets
}

// GroupBalance collapses the subject's per-counterparty nets within one
// group's records to a single scalar: positive means the subject is owed
// overall within the group.
func GroupBalance(subjectID string, expenses []*models.Expense, settlements []*models.Settlement) float64 {
	var balance float64
	for _, n := range NetBalances(subjectID, expenses, settlements) {
		balance += n
	}
	return balance
}
