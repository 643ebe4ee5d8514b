package models

import "github.com/punchamoorthee/ninjabank/internal/domain"

// TransactionRow is one line of a ninja's history table.
// TypeClass is the lowercase, whitespace-free type used for styling only.
type TransactionRow struct {
	Date        string
	Type        string
	TypeClass   string
	Amount      int64
	Reason      string
	Placeholder bool
}

// CoinsPage is the balance and history result for POST /coins.
// Rows is never empty; a ninja without history gets one placeholder row.
type CoinsPage struct {
	NinjaName string
	Coins     domain.CoinBreakdown
	Rows      []TransactionRow
}

// NinjaOption is a picker entry on the Add-Coins form.
type NinjaOption struct {
	ID   string
	Name string
}

type AddCoinsPage struct {
	SenseiFirstName string
	Ninjas          []NinjaOption
	Types           []domain.TransactionType
	MinAmount       int64
}

// AddCoinsRequest is the raw Add-Coins form submission. NinjaName carries
// the picked ninja's record id, as the form field is named.
type AddCoinsRequest struct {
	NinjaName string
	Amount    string
	Reason    string
	Type      string
}

// MessagePage is an informational result: not found, wrong password,
// validation failure or a generic error.
type MessagePage struct {
	Title    string
	Message  string
	LinkHref string
	LinkText string
}

type SuccessPage struct {
	Message string
}
