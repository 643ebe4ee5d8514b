package domain

import (
	"errors"
	"time"
)

var (
	ErrNinjaNotFound  = errors.New("ninja not found")
	ErrSenseiNotFound = errors.New("sensei not found")

	// ErrStoreUnavailable covers network failures, timeouts and
	// server-side (5xx, 429) answers from the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrStoreQuery covers rejected queries and undecodable responses.
	ErrStoreQuery = errors.New("record store query failed")
)

// Ninja is a student account. Coins is the running total the record
// store derives from the ninja's transactions.
type Ninja struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Coins     int64  `json:"coins"`
	LoginCode string `json:"login_code"`
}

type TransactionType string

const (
	Deposit    TransactionType = "Deposit"
	Withdrawal TransactionType = "Withdrawal"
	Purchase   TransactionType = "Purchase"
)

// TransactionTypes lists the accepted types in picker order.
var TransactionTypes = []TransactionType{Deposit, Withdrawal, Purchase}

func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdrawal, Purchase:
		return true
	}
	return false
}

// Transaction is an immutable record of a coin change. Date, Type and
// Reason are kept as the store returned them; missing cells stay empty.
type Transaction struct {
	ID       string          `json:"id"`
	NinjaRef string          `json:"ninja_ref"`
	Date     string          `json:"date"`
	Type     TransactionType `json:"type"`
	Amount   int64           `json:"amount"`
	Reason   string          `json:"reason"`
	Staff    string          `json:"staff"`
}

// NewTransaction is the write model for a transaction recorded by a sensei.
type NewTransaction struct {
	NinjaRef string
	Amount   int64
	Reason   string
	Type     TransactionType
	Staff    string
}

// Sensei is a staff account. Password holds whatever the store keeps:
// plaintext or a bcrypt/argon2id hash.
type Sensei struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FirstName string `json:"first_name"`
	Name      string `json:"name"`
}

// Session is the per-client state. SenseiUser is empty until a password
// check succeeds.
type Session struct {
	Token      string    `json:"token"`
	SenseiUser string    `json:"sensei_user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.SenseiUser != ""
}
