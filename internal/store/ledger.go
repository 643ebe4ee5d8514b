package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/punchamoorthee/ninjabank/internal/domain"
)

const (
	TableNinjas       = "Ninjas"
	TableTransactions = "Transactions"
	TableSensei       = "Sensei"

	FieldName            = "Name"
	FieldCoins           = "Coins"
	FieldLoginInfo       = "Login Info"
	FieldDate            = "Date"
	FieldTransactionType = "Transaction Type"
	FieldAmount          = "Amount"
	FieldReason          = "Reason"
	FieldStaff           = "Staff"
	FieldNinjas          = "Ninjas"
	FieldUsername        = "Username"
	FieldPassword        = "Password"
	FieldFirstName       = "First Name"
)

// LedgerStore maps the three tables onto domain types.
type LedgerStore struct {
	client *Client
}

func NewLedgerStore(client *Client) *LedgerStore {
	return &LedgerStore{client: client}
}

// FindNinjaByCode returns domain.ErrNinjaNotFound when no ninja has the code.
func (s *LedgerStore) FindNinjaByCode(ctx context.Context, code string) (*domain.Ninja, error) {
	filter, err := Eq(FieldLoginInfo, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNinjaNotFound, err)
	}

	rec, err := s.client.FindOne(ctx, TableNinjas, Query{Filter: filter})
	if errors.Is(err, ErrRecordNotFound) {
		return nil, domain.ErrNinjaNotFound
	}
	if err != nil {
		return nil, err
	}

	ninja := toNinja(rec)
	return &ninja, nil
}

// ListNinjas returns id and name of every ninja, sorted by name.
func (s *LedgerStore) ListNinjas(ctx context.Context) ([]domain.Ninja, error) {
	recs, err := s.client.FindAll(ctx, TableNinjas, Query{
		Fields: []string{FieldName},
		Sort:   []Sort{{Field: FieldName, Direction: Asc}},
	})
	if err != nil {
		return nil, err
	}

	ninjas := make([]domain.Ninja, 0, len(recs))
	for i := range recs {
		ninjas = append(ninjas, toNinja(&recs[i]))
	}
	return ninjas, nil
}

// ListTransactionsByCode returns a ninja's history, newest first.
func (s *LedgerStore) ListTransactionsByCode(ctx context.Context, code string) ([]domain.Transaction, error) {
	filter, err := Eq(FieldLoginInfo, code)
	if err != nil {
		return nil, err
	}

	recs, err := s.client.FindAll(ctx, TableTransactions, Query{
		Filter: filter,
		Sort:   []Sort{{Field: FieldDate, Direction: Desc}},
	})
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(recs))
	for i := range recs {
		txs = append(txs, toTransaction(&recs[i]))
	}
	return txs, nil
}

// FindSenseiByUsername returns domain.ErrSenseiNotFound when no account
// matches. fields limits which cells are fetched; none means all.
func (s *LedgerStore) FindSenseiByUsername(ctx context.Context, username string, fields ...string) (*domain.Sensei, error) {
	filter, err := Eq(FieldUsername, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSenseiNotFound, err)
	}

	rec, err := s.client.FindOne(ctx, TableSensei, Query{Filter: filter, Fields: fields})
	if errors.Is(err, ErrRecordNotFound) {
		return nil, domain.ErrSenseiNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain.Sensei{
		ID:        rec.ID,
		Username:  stringField(rec, FieldUsername),
		Password:  stringField(rec, FieldPassword),
		FirstName: stringField(rec, FieldFirstName),
		Name:      stringField(rec, FieldName),
	}, nil
}

func (s *LedgerStore) CreateTransaction(ctx context.Context, tx domain.NewTransaction) (*domain.Transaction, error) {
	rec, err := s.client.Insert(ctx, TableTransactions, map[string]any{
		FieldNinjas:          []string{tx.NinjaRef},
		FieldAmount:          tx.Amount,
		FieldReason:          tx.Reason,
		FieldTransactionType: string(tx.Type),
		FieldStaff:           tx.Staff,
	})
	if err != nil {
		return nil, err
	}

	created := toTransaction(rec)
	if created.NinjaRef == "" {
		created.NinjaRef = tx.NinjaRef
	}
	return &created, nil
}

func toNinja(rec *Record) domain.Ninja {
	return domain.Ninja{
		ID:        rec.ID,
		Name:      stringField(rec, FieldName),
		Coins:     intField(rec, FieldCoins),
		LoginCode: stringField(rec, FieldLoginInfo),
	}
}

func toTransaction(rec *Record) domain.Transaction {
	return domain.Transaction{
		ID:       rec.ID,
		NinjaRef: stringField(rec, FieldNinjas),
		Date:     stringField(rec, FieldDate),
		Type:     domain.TransactionType(stringField(rec, FieldTransactionType)),
		Amount:   intField(rec, FieldAmount),
		Reason:   stringField(rec, FieldReason),
		Staff:    stringField(rec, FieldStaff),
	}
}

// stringField reads a text cell. Linked-record and lookup cells arrive as
// arrays; their first element is used.
func stringField(rec *Record, name string) string {
	switch v := rec.Fields[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case []any:
		if len(v) > 0 {
			return stringField(&Record{Fields: map[string]any{name: v[0]}}, name)
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// intField reads a numeric cell, truncating fractions. Missing or
// non-numeric cells read as zero.
func intField(rec *Record, name string) int64 {
	switch v := rec.Fields[name].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	case []any:
		if len(v) > 0 {
			return intField(&Record{Fields: map[string]any{name: v[0]}}, name)
		}
	}
	return 0
}
