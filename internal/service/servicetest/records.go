// Package servicetest provides an in-memory service.Records for tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/punchamoorthee/ninjabank/internal/domain"
)

const (
	OpFindNinja        = "FindNinjaByCode"
	OpListNinjas       = "ListNinjas"
	OpListTransactions = "ListTransactionsByCode"
	OpFindSensei       = "FindSenseiByUsername"
	OpCreate           = "CreateTransaction"
)

// Records answers from maps. Set Errs[op] to make an operation fail.
type Records struct {
	mu sync.Mutex

	Ninjas       []domain.Ninja
	Transactions map[string][]domain.Transaction
	Senseis      map[string]domain.Sensei
	Errs         map[string]error

	Created      []domain.NewTransaction
	SenseiFields [][]string
	calls        map[string]int
}

func NewRecords() *Records {
	return &Records{
		Transactions: map[string][]domain.Transaction{},
		Senseis:      map[string]domain.Sensei{},
		Errs:         map[string]error{},
		calls:        map[string]int{},
	}
}

// Calls reports how often op ran; an empty op sums every operation.
func (r *Records) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op != "" {
		return r.calls[op]
	}
	total := 0
	for _, n := range r.calls {
		total += n
	}
	return total
}

func (r *Records) enter(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	return r.Errs[op]
}

func (r *Records) FindNinjaByCode(_ context.Context, code string) (*domain.Ninja, error) {
	if err := r.enter(OpFindNinja); err != nil {
		return nil, err
	}
	for _, n := range r.Ninjas {
		if n.LoginCode == code {
			found := n
			return &found, nil
		}
	}
	return nil, domain.ErrNinjaNotFound
}

func (r *Records) ListNinjas(context.Context) ([]domain.Ninja, error) {
	if err := r.enter(OpListNinjas); err != nil {
		return nil, err
	}
	out := make([]domain.Ninja, 0, len(r.Ninjas))
	for _, n := range r.Ninjas {
		out = append(out, domain.Ninja{ID: n.ID, Name: n.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListTransactionsByCode returns history newest first; dates are ISO
// strings so lexical order is date order.
func (r *Records) ListTransactionsByCode(_ context.Context, code string) ([]domain.Transaction, error) {
	if err := r.enter(OpListTransactions); err != nil {
		return nil, err
	}
	out := append([]domain.Transaction(nil), r.Transactions[code]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *Records) FindSenseiByUsername(_ context.Context, username string, fields ...string) (*domain.Sensei, error) {
	if err := r.enter(OpFindSensei); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.SenseiFields = append(r.SenseiFields, fields)
	r.mu.Unlock()

	s, ok := r.Senseis[username]
	if !ok {
		return nil, domain.ErrSenseiNotFound
	}
	return &s, nil
}

func (r *Records) CreateTransaction(_ context.Context, tx domain.NewTransaction) (*domain.Transaction, error) {
	if err := r.enter(OpCreate); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = append(r.Created, tx)
	return &domain.Transaction{
		ID:       fmt.Sprintf("recTX%d", len(r.Created)),
		NinjaRef: tx.NinjaRef,
		Type:     tx.Type,
		Amount:   tx.Amount,
		Reason:   tx.Reason,
		Staff:    tx.Staff,
	}, nil
}
