package domain

import "time"

// EntryType distinguishes money in from money out. Shared by categories
// and transactions.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == EntryIncome || t == EntryExpense
}

// Category is a user-defined transaction grouping with an independent
// lifecycle; many per user.
type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      EntryType
	Color     string
	CreatedAt time.Time
}
