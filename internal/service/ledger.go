package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/punchamoorthee/ninjabank/internal/domain"
	"github.com/punchamoorthee/ninjabank/internal/models"
	"github.com/punchamoorthee/ninjabank/internal/store"
)

const (
	MinAmount = -100

	defaultNinjaName  = "Ninja"
	defaultSenseiName = "Sensei"
	unknownValue      = "Unknown"
	noHistoryMessage  = "No transactions yet."
)

// Records is the record store as the ledger sees it.
type Records interface {
	FindNinjaByCode(ctx context.Context, code string) (*domain.Ninja, error)
	ListNinjas(ctx context.Context) ([]domain.Ninja, error)
	ListTransactionsByCode(ctx context.Context, code string) ([]domain.Transaction, error)
	FindSenseiByUsername(ctx context.Context, username string, fields ...string) (*domain.Sensei, error)
	CreateTransaction(ctx context.Context, tx domain.NewTransaction) (*domain.Transaction, error)
}

// ValidationError is a rejected Add-Coins submission; Msg is safe to show.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

type LoginResult int

const (
	LoginOK LoginResult = iota
	LoginUnknownUser
	LoginBadPassword
)

type LedgerService struct {
	records Records
}

func NewLedgerService(records Records) *LedgerService {
	return &LedgerService{records: records}
}

// LookupCoins builds the balance page for a ninja code. An unknown code
// yields domain.ErrNinjaNotFound.
func (s *LedgerService) LookupCoins(ctx context.Context, code string) (*models.CoinsPage, error) {
	ninja, err := s.records.FindNinjaByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	txs, err := s.records.ListTransactionsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("transactions for %s: %w", ninja.ID, err)
	}

	name := ninja.Name
	if name == "" {
		name = defaultNinjaName
	}

	return &models.CoinsPage{
		NinjaName: name,
		Coins:     domain.Decompose(ninja.Coins),
		Rows:      transactionRows(txs),
	}, nil
}

func transactionRows(txs []domain.Transaction) []models.TransactionRow {
	if len(txs) == 0 {
		return []models.TransactionRow{{Reason: noHistoryMessage, Placeholder: true}}
	}

	rows := make([]models.TransactionRow, 0, len(txs))
	for _, tx := range txs {
		date := tx.Date
		if date == "" {
			date = unknownValue
		}
		typ := string(tx.Type)
		if typ == "" {
			typ = unknownValue
		}
		rows = append(rows, models.TransactionRow{
			Date:      date,
			Type:      typ,
			TypeClass: typeClass(typ),
			Amount:    tx.Amount,
			Reason:    tx.Reason,
		})
	}
	return rows
}

// typeClass lowercases t and drops all whitespace.
func typeClass(t string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, t)
}

// AuthenticateSensei checks a username/password pair. Unknown users and
// wrong passwords are results, not errors; err is only set on store failure.
func (s *LedgerService) AuthenticateSensei(ctx context.Context, username, password string) (LoginResult, error) {
	sensei, err := s.records.FindSenseiByUsername(ctx, username)
	if errors.Is(err, domain.ErrSenseiNotFound) {
		return LoginUnknownUser, nil
	}
	if err != nil {
		return 0, err
	}

	if !VerifyPassword(sensei.Password, password) {
		return LoginBadPassword, nil
	}
	return LoginOK, nil
}

// AddCoinsForm loads the sensei's first name and the ninja picker.
func (s *LedgerService) AddCoinsForm(ctx context.Context, username string) (*models.AddCoinsPage, error) {
	firstName := defaultSenseiName
	sensei, err := s.records.FindSenseiByUsername(ctx, username, store.FieldFirstName)
	switch {
	case err == nil:
		if sensei.FirstName != "" {
			firstName = sensei.FirstName
		}
	case !errors.Is(err, domain.ErrSenseiNotFound):
		return nil, err
	}

	ninjas, err := s.records.ListNinjas(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]models.NinjaOption, 0, len(ninjas))
	for _, n := range ninjas {
		options = append(options, models.NinjaOption{ID: n.ID, Name: n.Name})
	}

	return &models.AddCoinsPage{
		SenseiFirstName: firstName,
		Ninjas:          options,
		Types:           domain.TransactionTypes,
		MinAmount:       MinAmount,
	}, nil
}

// RecordTransaction validates the submission and writes one transaction
// attributed to the sensei's display name, or the raw username when the
// account cannot be found.
func (s *LedgerService) RecordTransaction(ctx context.Context, username string, req models.AddCoinsRequest) (*domain.Transaction, error) {
	tx, err := parseAddCoins(req)
	if err != nil {
		return nil, err
	}

	if username == "" {
		username = unknownValue
	}
	tx.Staff = username

	sensei, err := s.records.FindSenseiByUsername(ctx, username, store.FieldName)
	switch {
	case err == nil:
		if sensei.Name != "" {
			tx.Staff = sensei.Name
		}
	case !errors.Is(err, domain.ErrSenseiNotFound):
		return nil, err
	}

	return s.records.CreateTransaction(ctx, tx)
}

func parseAddCoins(req models.AddCoinsRequest) (domain.NewTransaction, error) {
	ninjaRef := strings.TrimSpace(req.NinjaName)
	if ninjaRef == "" {
		return domain.NewTransaction{}, &ValidationError{Msg: "Please pick a ninja."}
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(req.Amount), 10, 64)
	if err != nil {
		return domain.NewTransaction{}, &ValidationError{Msg: "Amount must be a whole number."}
	}
	if amount < MinAmount {
		return domain.NewTransaction{}, &ValidationError{Msg: fmt.Sprintf("Amount cannot be less than %d.", MinAmount)}
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.NewTransaction{}, &ValidationError{Msg: "Please give a reason."}
	}

	typ := domain.TransactionType(req.Type)
	if !typ.Valid() {
		return domain.NewTransaction{}, &ValidationError{Msg: "Pick Deposit, Withdrawal or Purchase."}
	}

	return domain.NewTransaction{
		NinjaRef: ninjaRef,
		Amount:   amount,
		Reason:   reason,
		Type:     typ,
	}, nil
}
