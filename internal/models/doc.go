// Package models defines the core domain models for Splitr.
//
// # Entities
//
//   - User: a registered account (id, display name, email, avatar)
//   - Group: a named set of members sharing a ledger
//   - Expense: a cost paid by one user and split among participants
//   - Split: one participant's owed portion of an expense
//   - Settlement: a direct payment between two users
//
// # Conventions
//
// All ids are UUID strings. Timestamps, including expense and settlement
// dates, are Unix seconds. Monetary amounts are float64 values in a single
// implied currency; formatting and rounding are presentation concerns.
//
// An expense or settlement with an empty GroupID is personal (1-to-1).
// Group members may be invited by email before they have an account; such
// memberships carry an email but no user reference (see MemberRef).
//
// Relationships use id strings rather than pointers to avoid circular
// references. The reconciliation engine treats all of these as read-only
// inputs; they are created and mutated elsewhere.
package models
