package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bigbooks/internal/domain/ledger"
)

type ledgerRepository struct {
	s *Store
}

// NewLedgerRepository 创建账本仓储
func NewLedgerRepository(s *Store) ledger.Repository {
	return &ledgerRepository{s: s}
}

func (r *ledgerRepository) Append(ctx context.Context, e *ledger.Entry) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.confirmations[e.Confirmation]; ok {
			return ledger.ErrConfirmationConflict
		}
		r.s.nextEntryID++
		e.ID = r.s.nextEntryID

		cp := *e
		r.s.entries[e.ID] = &cp
		r.s.confirmations[e.Confirmation] = e.ID
		r.s.byAccount[e.AccountID] = append(r.s.byAccount[e.AccountID], e.ID)
		return nil
	})
}

func (r *ledgerRepository) FindByConfirmation(ctx context.Context, confirmation string) (*ledger.Entry, error) {
	var found *ledger.Entry
	r.s.read(ctx, func() {
		if id, ok := r.s.confirmations[confirmation]; ok {
			cp := *r.s.entries[id]
			found = &cp
		}
	})
	if found == nil {
		return nil, ledger.ErrEntryNotFound
	}
	return found, nil
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID uint) ([]*ledger.Entry, error) {
	var list []*ledger.Entry
	r.s.read(ctx, func() {
		for _, id := range r.s.byAccount[accountID] {
			cp := *r.s.entries[id]
			list = append(list, &cp)
		}
	})
	return list, nil
}

func (r *ledgerRepository) SumByAccount(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.s.read(ctx, func() {
		for _, id := range r.s.byAccount[accountID] {
			sum = sum.Add(r.s.entries[id].Amount)
		}
	})
	return sum, nil
}

func (r *ledgerRepository) CountDistinctBooks(ctx context.Context, accountIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(accountIDs))
	r.s.read(ctx, func() {
		for _, accountID := range accountIDs {
			seen := make(map[uint]struct{})
			for _, id := range r.s.byAccount[accountID] {
				if e := r.s.entries[id]; e.BookID != nil {
					seen[*e.BookID] = struct{}{}
				}
			}
			counts[accountID] = len(seen)
		}
	})
	return counts, nil
}
